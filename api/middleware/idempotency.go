package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ezoostore/storefront-backend/api/responses"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
	"github.com/ezoostore/storefront-backend/pkg/logger"
	pkgredis "github.com/ezoostore/storefront-backend/pkg/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"

	// OrderCreateIdempotencyTTL keeps checkout retries safe for a week.
	OrderCreateIdempotencyTTL = 7 * 24 * time.Hour
	// OrderActionIdempotencyTTL covers cancel and return requests.
	OrderActionIdempotencyTTL = 24 * time.Hour

	inFlightTTL        = 30 * time.Second
	maxIdempotencyKey  = 255
	inFlightLockSuffix = ":lock"
)

type idempotencyRecord struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
	RequestHash string `json:"request_hash"`
}

// Idempotent makes a mutating route safe to retry. The first response for a
// (user, method, path, key) tuple is stored for ttl and replayed for identical
// retries; a retry with a different body is rejected. 5xx responses are not
// stored so the client can try again under the same key. A nil store turns
// the middleware into a pass-through.
func Idempotent(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			switch {
			case key == "":
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			case len(key) > maxIdempotencyKey:
				responses.WriteError(ctx, logg, w, pkgerrors.Newf(pkgerrors.CodeValidation, "Idempotency-Key must be at most %d characters", maxIdempotencyKey))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unable to read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashRequest(body)
			storeKey := store.IdempotencyKey(idempotencyScope(r), key)

			record, err := loadRecord(ctx, store, storeKey)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if record != nil {
				if record.RequestHash != requestHash {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
					return
				}
				replay(w, record)
				return
			}

			lockKey := storeKey + inFlightLockSuffix
			acquired, err := store.SetNX(ctx, lockKey, requestHash, inFlightTTL)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock idempotency key"))
				return
			}
			if !acquired {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "a request with this idempotency key is still in progress"))
				return
			}
			defer func() {
				if err := store.Del(context.WithoutCancel(ctx), lockKey); err != nil {
					logError(ctx, logg, "release idempotency lock", err)
				}
			}()

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			status := capture.statusCode()
			if status >= http.StatusInternalServerError {
				return
			}
			payload, err := json.Marshal(idempotencyRecord{
				Status:      status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
				RequestHash: requestHash,
			})
			if err != nil {
				logError(ctx, logg, "marshal idempotency record", err)
				return
			}
			if _, err := store.SetNX(context.WithoutCancel(ctx), storeKey, string(payload), ttl); err != nil {
				logError(ctx, logg, "persist idempotency record", err)
			}
		})
	}
}

// idempotencyScope keys are per caller so two users can never collide on a
// client generated key.
func idempotencyScope(r *http.Request) string {
	return strings.Join([]string{UserIDFromContext(r.Context()), r.Method, r.URL.Path}, "|")
}

func loadRecord(ctx context.Context, store pkgredis.IdempotencyStore, key string) (*idempotencyRecord, error) {
	stored, err := store.Get(ctx, key)
	if errors.Is(err, redis.Nil) || (err == nil && stored == "") {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func replay(w http.ResponseWriter, record *idempotencyRecord) {
	if record.ContentType != "" {
		w.Header().Set("Content-Type", record.ContentType)
	}
	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(record.Status)
	_, _ = w.Write(record.Body)
}

func hashRequest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) statusCode() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
