package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/hyperon-hyeon/Graphear/config"
	"github.com/hyperon-hyeon/Graphear/internal/models"
	"github.com/hyperon-hyeon/Graphear/pkg/logger"
)

// maxChunkRunes is the longest text the translate TTS endpoint accepts per request.
const maxChunkRunes = 100

// GTTS speaks through the Google Translate TTS endpoint, the same protocol the
// gTTS libraries use. Long text is split into chunks and the MP3 frames are
// concatenated.
type GTTS struct {
	endpoint     string
	language     string
	pauseOnBreak bool
	httpClient   *http.Client
	limiter      *rate.Limiter
	logger       logger.Logger
}

func NewGTTS(cfg config.TTSConfig, log logger.Logger) *GTTS {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	return &GTTS{
		endpoint:     cfg.Endpoint,
		language:     cfg.Language,
		pauseOnBreak: cfg.PauseOnBreak,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		limiter:      rate.NewLimiter(limit, 1),
		logger:       log,
	}
}

func (g *GTTS) Name() string {
	return "gtts/" + g.language
}

func (g *GTTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	chunks := SplitChunks(PrepareText(text, g.pauseOnBreak), maxChunkRunes)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: text is empty", models.ErrInvalidInput)
	}

	var audio bytes.Buffer
	for i, chunk := range chunks {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		if err := g.fetch(ctx, chunk, i, len(chunks), &audio); err != nil {
			return nil, err
		}
	}

	g.logger.Debug("Speech synthesized",
		logger.Int("chunks", len(chunks)),
		logger.Int("bytes", audio.Len()),
	)
	return audio.Bytes(), nil
}

func (g *GTTS) fetch(ctx context.Context, chunk string, idx, total int, w io.Writer) error {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("q", chunk)
	q.Set("tl", g.language)
	q.Set("client", "tw-ob")
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Referer", "http://translate.google.com/")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: tts request failed: %v", models.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: tts returned %d: %s", models.ErrExternalService, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("%w: failed to read tts audio: %v", models.ErrExternalService, err)
	}
	return nil
}

// SplitChunks cuts text into pieces of at most max runes, preferring to cut
// after punctuation, then after whitespace, and only then mid-word.
func SplitChunks(text string, max int) []string {
	var chunks []string
	runes := []rune(strings.TrimSpace(text))
	for len(runes) > 0 {
		if len(runes) <= max {
			chunks = appendChunk(chunks, string(runes))
			break
		}
		cut := cutPoint(runes[:max])
		chunks = appendChunk(chunks, string(runes[:cut]))
		runes = []rune(strings.TrimLeftFunc(string(runes[cut:]), unicode.IsSpace))
	}
	return chunks
}

func cutPoint(window []rune) int {
	for i := len(window) - 1; i > 0; i-- {
		if strings.ContainsRune(".,!?;:。、", window[i]) {
			return i + 1
		}
	}
	for i := len(window) - 1; i > 0; i-- {
		if unicode.IsSpace(window[i]) {
			return i
		}
	}
	return len(window)
}

func appendChunk(chunks []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		chunks = append(chunks, s)
	}
	return chunks
}
