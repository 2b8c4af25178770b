package plotly

import (
	"bytes"
	"html/template"
)

// ScriptURL is the plotly.js bundle referenced by HTML pages.
const ScriptURL = "https://cdn.plot.ly/plotly-2.35.2.min.js"

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.Script}}"></script>
<style>html, body { margin: 0; height: 100%; } #treemap { width: 100%; height: 100%; }</style>
</head>
<body>
<div id="treemap"></div>
<script>
Plotly.newPlot("treemap", {{.Figure}}.data, {{.Figure}}.layout, {responsive: true});
</script>
</body>
</html>
`))

// HTML renders fig as a standalone page that loads plotly.js from [ScriptURL].
func HTML(fig *Figure, title string) ([]byte, error) {
	figJSON, err := fig.JSON()
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = "treemap"
	}
	var buf bytes.Buffer
	err = pageTmpl.Execute(&buf, struct {
		Title  string
		Script string
		Figure template.JS
	}{title, ScriptURL, template.JS(figJSON)})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
