package speech

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"carelink/pkg/storage"
)

// CachedSynthesizer fronts a Synthesizer with an object store so
// repeated phrases are served without another upstream call.
type CachedSynthesizer struct {
	inner Synthesizer
	store storage.ObjectStore
}

func NewCachedSynthesizer(inner Synthesizer, store storage.ObjectStore) *CachedSynthesizer {
	return &CachedSynthesizer{inner: inner, store: store}
}

func (c *CachedSynthesizer) Speak(ctx context.Context, text, voice string) ([]byte, error) {
	key := cacheKey(text, voice)
	rc, err := c.store.Get(ctx, key)
	if err == nil {
		defer rc.Close()
		audio, readErr := io.ReadAll(rc)
		if readErr == nil {
			return audio, nil
		}
		slog.Warn("audio cache read failed", "key", key, "err", readErr)
	} else if !errors.Is(err, storage.ErrNotFound) {
		slog.Warn("audio cache read failed", "key", key, "err", err)
	}

	audio, err := c.inner.Speak(ctx, text, voice)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(ctx, key, bytes.NewReader(audio), int64(len(audio)), "audio/mpeg"); err != nil {
		slog.Warn("audio cache write failed", "key", key, "err", err)
	}
	return audio, nil
}

func cacheKey(text, voice string) string {
	if voice == "" {
		voice = defaultVoice
	}
	sum := sha256.Sum256([]byte(voice + "|" + text))
	return fmt.Sprintf("tts/%s.mp3", hex.EncodeToString(sum[:]))
}
