package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agromart/agromart-backend/api/responses"
	pkgerrors "github.com/agromart/agromart-backend/pkg/errors"
	"github.com/agromart/agromart-backend/pkg/logger"
	pkgredis "github.com/agromart/agromart-backend/pkg/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
	maxIdempotencyKey = 255

	stateInFlight = "in_flight"
	stateDone     = "done"
)

// IdempotencyPolicy configures one route. Required routes reject requests
// without the header; optional routes pass them through untouched.
type IdempotencyPolicy struct {
	Required bool
	TTL      time.Duration
}

var (
	// CheckoutIdempotency guards order creation.
	CheckoutIdempotency = IdempotencyPolicy{Required: true, TTL: 7 * 24 * time.Hour}
	// OptionalIdempotency is used on creates that are safe to retry blind.
	OptionalIdempotency = IdempotencyPolicy{TTL: 24 * time.Hour}
)

type idempotencyRecord struct {
	State       string `json:"state"`
	RequestHash string `json:"request_hash"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        string `json:"body,omitempty"`
}

// Idempotency replays the stored response when a request repeats its
// Idempotency-Key with the same body. A different body, or a repeat while
// the first request is still running, is answered with 409. Keys are scoped
// to the caller and the request path. 5xx responses are not stored so the
// client can retry.
func Idempotency(store pkgredis.IdempotencyStore, policy IdempotencyPolicy, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil || policy.TTL <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			idemKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if idemKey == "" {
				if policy.Required {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			if len(idemKey) > maxIdempotencyKey {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key too long"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashBody(body)
			key := store.IdempotencyKey(idempotencyScope(r), idemKey)

			claimed, err := store.SetNX(ctx, key, encodeRecord(idempotencyRecord{State: stateInFlight, RequestHash: requestHash}), policy.TTL)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key"))
				return
			}
			if !claimed {
				replay(w, r, store, key, requestHash, logg)
				return
			}

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			if rec.code() >= http.StatusInternalServerError {
				if err := store.Del(ctx, key); err != nil && logg != nil {
					logg.Error(ctx, "release idempotency key", err)
				}
				return
			}
			done := idempotencyRecord{
				State:       stateDone,
				RequestHash: requestHash,
				Status:      rec.code(),
				ContentType: rec.Header().Get("Content-Type"),
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
			}
			if err := store.Set(ctx, key, encodeRecord(done), policy.TTL); err != nil && logg != nil {
				logg.Error(ctx, "persist idempotency record", err)
			}
		})
	}
}

func replay(w http.ResponseWriter, r *http.Request, store pkgredis.IdempotencyStore, key, requestHash string, logg *logger.Logger) {
	ctx := r.Context()
	stored, err := store.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		// The first attempt failed and released the key between our SetNX and Get.
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "request with this Idempotency-Key is being retried, try again"))
		return
	}
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load idempotency record"))
		return
	}

	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	if record.RequestHash != requestHash {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "Idempotency-Key reused with a different request body"))
		return
	}
	if record.State != stateDone {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "request with this Idempotency-Key is still in progress"))
		return
	}

	payload, err := base64.StdEncoding.DecodeString(record.Body)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode stored response"))
		return
	}
	if record.ContentType != "" {
		w.Header().Set("Content-Type", record.ContentType)
	}
	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(record.Status)
	_, _ = w.Write(payload)
}

func idempotencyScope(r *http.Request) string {
	return strings.Join([]string{UserIDFromContext(r.Context()).String(), r.Method, r.URL.Path}, "|")
}

func encodeRecord(record idempotencyRecord) string {
	payload, _ := json.Marshal(record)
	return string(payload)
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseCapture) code() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}
