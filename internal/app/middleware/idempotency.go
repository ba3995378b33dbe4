package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"pucisca/internal/app/commands"
)

// IdempotentCommand must be implemented by commands that want idempotency guarantees.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	ResultPrototype() any // pointer to the handler result type
}

// CodedError lets a handler error survive a replay with its classification intact.
type CodedError interface {
	error
	ErrorCode() string
}

// ErrorRestorer rebuilds a stored CodedError on replay.
type ErrorRestorer interface {
	RestoreError(code, message string) error
}

type IdempotencyRecord struct {
	Key         string
	Fingerprint string
	Payload     []byte
	Error       string
	ErrorCode   string
	OccurredAt  time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONResultCodec) Decode(data []byte, out any) error {
	return json.Unmarshal(data, out)
}

var (
	// ErrIdempotencyConflict is returned when a key is reused with a different payload.
	ErrIdempotencyConflict = errors.New("middleware: idempotency key reused with different payload")
	errMissingPrototype    = errors.New("middleware: idempotent command requires result prototype")
)

func Idempotency(store IdempotencyStore, codec ResultCodec) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok {
				return next.Dispatch(ctx, cmd)
			}
			key := idCmd.IdempotencyKey()
			if key == "" {
				return next.Dispatch(ctx, cmd)
			}
			key = cmd.Key() + ":" + key
			fingerprint, err := fingerprintOf(cmd)
			if err != nil {
				return nil, err
			}
			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found {
				return replay(idCmd, rec, fingerprint, codec)
			}
			result, err := next.Dispatch(ctx, cmd)
			record := IdempotencyRecord{
				Key:         key,
				Fingerprint: fingerprint,
				OccurredAt:  time.Now().UTC(),
			}
			if err != nil {
				var coded CodedError
				if !errors.As(err, &coded) {
					// only deterministic failures are worth remembering
					return nil, err
				}
				record.Error = err.Error()
				record.ErrorCode = coded.ErrorCode()
				if saveErr := store.Save(ctx, record); saveErr != nil {
					return nil, errors.Join(err, saveErr)
				}
				return nil, err
			}
			if result != nil {
				payload, encErr := codec.Encode(result)
				if encErr != nil {
					return nil, encErr
				}
				record.Payload = payload
			}
			if saveErr := store.Save(ctx, record); saveErr != nil {
				return nil, saveErr
			}
			return result, nil
		})
	}
}

func replay(cmd IdempotentCommand, rec IdempotencyRecord, fingerprint string, codec ResultCodec) (any, error) {
	if rec.Fingerprint != "" && rec.Fingerprint != fingerprint {
		return nil, ErrIdempotencyConflict
	}
	if rec.Error != "" {
		if r, ok := cmd.(ErrorRestorer); ok && rec.ErrorCode != "" {
			return nil, r.RestoreError(rec.ErrorCode, rec.Error)
		}
		return nil, errors.New(rec.Error)
	}
	proto := cmd.ResultPrototype()
	if proto == nil {
		return nil, errMissingPrototype
	}
	if err := codec.Decode(rec.Payload, proto); err != nil {
		return nil, err
	}
	return derefPrototype(proto), nil
}

func fingerprintOf(cmd commands.Command) (string, error) {
	raw, err := json.Marshal(cmd)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

func derefPrototype(proto any) any {
	rv := reflect.ValueOf(proto)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return rv.Elem().Interface()
	}
	return proto
}
