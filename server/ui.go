package server

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed webui/*
var uiFS embed.FS

// RegisterWebUI вешает встроенный дашборд на prefix ("/ui/" по умолчанию)
// и перенаправляет на него корень сайта.
func (a *App) RegisterWebUI(prefix string) {
	if prefix == "" {
		prefix = "/ui/"
	}
	base := strings.TrimSuffix(prefix, "/")
	slash := base + "/"

	sub, err := fs.Sub(uiFS, "webui")
	if err != nil {
		panic(err)
	}
	index, err := fs.ReadFile(sub, "index.html")
	if err != nil {
		panic(err)
	}

	a.Router.HandleFunc(base, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, slash, http.StatusFound)
	}).Methods(http.MethodGet)

	// index.html отдаём сами: FileServer на "/" ответил бы 301 на самого себя
	a.Router.HandleFunc(slash, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(index)
	}).Methods(http.MethodGet)

	a.Router.PathPrefix(slash).Handler(http.StripPrefix(slash, http.FileServer(http.FS(sub))))

	a.Router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, slash, http.StatusFound)
	}).Methods(http.MethodGet)
}
