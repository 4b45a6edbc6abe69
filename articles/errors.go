package articles

import (
	"net/http"

	"github.com/scribehub/go-scribe/errcode"
)

var (
	// ErrNotFound marks a missing article.
	ErrNotFound = errcode.New(
		errcode.ModuleArticles, 1,
		"articles", "error.articles.not_found", "article not found",
		http.StatusNotFound,
	)
)
