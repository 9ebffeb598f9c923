// Package apperr — таксономия ошибок Record Access Layer и их перевод в HTTP.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	Internal Kind = iota
	InvalidArgument
	NotFound
	DataError
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case NotFound:
		return "not_found"
	case DataError:
		return "data_error"
	default:
		return "internal"
	}
}

// Status — HTTP-код для вида ошибки.
func (k Kind) Status() int {
	switch k {
	case InvalidArgument:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is позволяет errors.Is(err, apperr.ErrNotFound) и т.п. сравнивать по виду.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrInvalidArgument = &Error{Kind: InvalidArgument}
	ErrNotFound        = &Error{Kind: NotFound}
	ErrDataError       = &Error{Kind: DataError}
)

func Invalid(msg string) error  { return &Error{Kind: InvalidArgument, Message: msg} }
func NotFoundf(msg string) error { return &Error{Kind: NotFound, Message: msg} }

// Data оборачивает ошибку хранилища; сообщение хранилища уходит клиенту как есть.
func Data(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: DataError, Err: err}
}

// KindOf — вид ошибки; всё незнакомое считается Internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// Message — текст для тела ответа. Internal наружу не раскрываем.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != Internal {
		return ae.Error()
	}
	return "Internal server error"
}

// Body — тело любого ответа об ошибке.
type Body struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Write переводит err в {error} с нужным статусом.
func Write(w http.ResponseWriter, err error) {
	WriteJSON(w, KindOf(err).Status(), Body{Error: Message(err)})
}

// WriteMessage — ответ с фиксированным текстом (например "Device not found").
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Body{Error: msg})
}

// NotFoundHandler — 404 {"error":"Not found"} для путей без маршрута.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteMessage(w, http.StatusNotFound, "Not found")
	})
}

// MethodNotAllowedHandler — 405 {"error":"Method not allowed"}.
func MethodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}
