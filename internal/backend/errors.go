package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"wardrobe/internal/services"
)

const stageName = "backend"

// RemoteError is a non-success response from the backend.
type RemoteError struct {
	Status int
	Detail string
}

func (e *RemoteError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("http %d", e.Status)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Detail)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var remote *RemoteError
	return errors.As(err, &remote) && remote.Status == http.StatusNotFound
}

type validationDetail struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// parseDetail extracts the FastAPI style {"detail": ...} message. Detail may be
// a string or a list of validation entries.
func parseDetail(status int, body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Detail) > 0 {
		var text string
		if err := json.Unmarshal(envelope.Detail, &text); err == nil {
			return strings.TrimSpace(text)
		}
		var entries []validationDetail
		if err := json.Unmarshal(envelope.Detail, &entries); err == nil && len(entries) > 0 {
			msgs := make([]string, 0, len(entries))
			for _, entry := range entries {
				msg := strings.TrimSpace(entry.Msg)
				if field := locationField(entry.Loc); field != "" {
					msg = field + ": " + msg
				}
				if msg != "" {
					msgs = append(msgs, msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	if trimmed := strings.TrimSpace(string(body)); trimmed != "" && len(trimmed) <= 200 {
		return trimmed
	}
	return http.StatusText(status)
}

func locationField(loc []any) string {
	if len(loc) == 0 {
		return ""
	}
	if last, ok := loc[len(loc)-1].(string); ok {
		return last
	}
	return ""
}

func remoteFailure(operation string, status int, body []byte) error {
	remote := &RemoteError{Status: status, Detail: parseDetail(status, body)}
	marker := services.ErrRemoteRejection
	if status == http.StatusNotFound {
		return services.Wrap(marker, stageName, operation, remote.Detail, errors.Join(remote, services.ErrNotFound))
	}
	return services.Wrap(marker, stageName, operation, remote.Detail, remote)
}

func transportFailure(operation string, err error) error {
	message := "request failed"
	if errors.Is(err, context.DeadlineExceeded) {
		message = "request timed out"
	} else if errors.Is(err, context.Canceled) {
		message = "request cancelled"
	}
	return services.Wrap(services.ErrTransport, stageName, operation, message, err)
}
