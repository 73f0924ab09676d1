package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrTransport: бэкенд недоступен (сеть, таймаут, оборванный ответ).
var ErrTransport = errors.New("backend unreachable")

// StatusError: бэкенд ответил, но не 2xx.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}
