package api

import (
	"html/template"
	"io"

	"github.com/example/gemini-relay/internal/models"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Gemini Chatbot</title>
<style>
  body { font-family: system-ui, sans-serif; max-width: 46rem; margin: 3rem auto; padding: 0 1rem; }
  form { display: flex; gap: .5rem; align-items: center; }
  input[type=text] { flex: 1; padding: .5rem; font-size: 1rem; }
  #output { white-space: pre-wrap; margin-top: 1.5rem; }
  #error { color: #b00020; margin-top: 1.5rem; }
</style>
</head>
<body>
<h1>&#x1F4AC; Gemini Chatbot</h1>
<form method="post" action="/">
  <label for="prompt">You:</label>
  <input type="text" id="prompt" name="prompt" value="{{.Input}}" autofocus autocomplete="off">
  <button type="submit">Send</button>
</form>
{{with .Exchange}}{{if .Failed}}<div id="error" role="alert">{{.Error}}</div>{{else}}<div id="output"><strong>&#x1F916; Gemini:</strong> {{.Output}}</div>{{end}}{{end}}
</body>
</html>
`))

type pageData struct {
	Input    string
	Exchange *models.Exchange
}

func renderPage(w io.Writer, d pageData) error {
	return pageTmpl.Execute(w, d)
}
