package handlers

import (
	"html/template"
	"log"
	"net/http"
)

// statusTemplate is the minimal page shown while a redirect flow ends in a
// user-visible message. The redirect pages have no other UI of their own.
var statusTemplate = template.Must(template.New("status").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>{{.Title}} — VertexCore</title></head>
<body style="max-width:800px;margin:0 auto;padding:24px;font-family:sans-serif">
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
<p><a href="/">Back to store</a></p>
</body>
</html>
`))

func renderStatusPage(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	data := struct{ Title, Message string }{Title: title, Message: message}
	if err := statusTemplate.Execute(w, data); err != nil {
		log.Printf("Error rendering status page: %v", err)
	}
}
