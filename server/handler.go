package server

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
)

type handler struct {
	list atomic.Pointer[List]
}

func newHandler(list List) *handler {
	h := &handler{}
	h.list.Store(&list)
	return h
}

func (h *handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	l := *h.list.Load()

	switch req.Method {
	case http.MethodGet:
	case http.MethodHead:
	default:
		w.WriteHeader(http.StatusNotImplemented)
		return
	}

	if req.URL.Path != "/" {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusNotFound)
		if req.Method == http.MethodGet {
			w.Write([]byte("not found"))
		}
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Generation", strconv.FormatUint(l.Generation(), 10))
	if req.Method == http.MethodHead {
		return
	}

	var sb strings.Builder
	for _, it := range l.Items() {
		sb.WriteString(it)
		sb.WriteByte('\n')
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(sb.String())); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

type feedHandler struct {
	feed *Feed
}

func (h *feedHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusNotImplemented)
		return
	}
	b, err := h.feed.Render("http://" + req.Host)
	if err != nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(err.Error()))
		log.Printf("failed to serve feed: %v", err)
		return
	}
	w.Header().Set("Content-Type", "application/atom+xml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(b); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}
