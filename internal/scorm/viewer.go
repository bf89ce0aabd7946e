package scorm

import (
	"fmt"
	"html"
	"mime"
	"path"
	"strings"
	"time"
)

// buildIndexHTML generates the self-contained viewer page: escaped header,
// one gallery section per non-empty media category, and a panel that
// pretty-prints the embedded LOM JSON at view time. Everything interpolated
// into the markup is escaped.
func buildIndexHTML(title, description, lomJSON string, assets []Asset, exportedAt time.Time) string {
	var sb strings.Builder

	sb.WriteString(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>`)
	sb.WriteString(html.EscapeString(title))
	sb.WriteString(`</title>
  <script src="scorm.js"></script>
  <style>
    body { font-family: system-ui, -apple-system, Segoe UI, Roboto, Helvetica, Arial, sans-serif; margin: 24px; line-height: 1.45; }
    h1 { margin: 0 0 8px; }
    .muted { color: #666; }
    .box { background: #fafafa; border: 1px solid #eee; border-radius: 10px; padding: 16px; margin-top: 24px; }
    pre { white-space: pre-wrap; word-break: break-word; }
  </style>
</head>
<body>
  <h1>`)
	sb.WriteString(html.EscapeString(title))
	sb.WriteString("</h1>\n  <div class=\"muted\">Exported: ")
	sb.WriteString(html.EscapeString(exportedAt.UTC().Format(time.RFC3339)))
	sb.WriteString("</div>\n  <p>")
	sb.WriteString(html.EscapeString(description))
	sb.WriteString("</p>\n\n")

	sb.WriteString(mediaSections(assets))

	sb.WriteString(`
  <div class="box">
    <h2>LOM metadata (JSON)</h2>
    <pre id="lom"></pre>
  </div>

  <script type="application/json" id="lom-json">`)
	sb.WriteString(html.EscapeString(lomJSON))
	sb.WriteString(`</script>
  <script>
    try {
      var raw = document.getElementById('lom-json').textContent || '{}';
      var obj = JSON.parse(raw);
      document.getElementById('lom').textContent = JSON.stringify(obj, null, 2);
    } catch (e) {
      document.getElementById('lom').textContent = 'Failed to load LOM metadata.';
    }
  </script>
</body>
</html>
`)

	return sb.String()
}

func mediaSections(assets []Asset) string {
	byKind := make(map[Kind][]Asset)
	for _, a := range assets {
		byKind[a.Kind] = append(byKind[a.Kind], a)
	}

	var sections []string
	for _, kind := range kindOrder {
		group := byKind[kind]
		if len(group) == 0 {
			continue
		}
		sections = append(sections, "<h2>"+sectionTitle(kind)+"</h2>")
		for _, a := range group {
			sections = append(sections, assetMarkup(a))
		}
	}

	if len(sections) == 0 {
		return "<p>No bundled media.</p>"
	}
	return strings.Join(sections, "\n")
}

func sectionTitle(kind Kind) string {
	switch kind {
	case KindImage:
		return "Images"
	case KindAudio:
		return "Audio"
	case KindVideo:
		return "Video"
	default:
		return "Documents"
	}
}

func assetMarkup(a Asset) string {
	href := html.EscapeString(a.Href)
	label := html.EscapeString(a.Label)

	switch a.Kind {
	case KindImage:
		return fmt.Sprintf(`<figure><img src="%s" alt="%s" style="max-width:100%%;height:auto"/><figcaption>%s</figcaption></figure>`, href, label, label)
	case KindAudio:
		return fmt.Sprintf(`<div><div>%s</div><audio controls src="%s"></audio></div>`, label, href)
	case KindVideo:
		return fmt.Sprintf(`<div><div>%s</div><video controls style="max-width:100%%" src="%s"></video></div>`, label, href)
	default:
		if inlineViewable(a.Href) {
			return fmt.Sprintf(`<div><div>%s</div><iframe title="%s" src="%s" style="width:100%%;height:520px;border:1px solid #ddd"></iframe></div>`, label, label, href)
		}
		return fmt.Sprintf(`<div><a href="%s" target="_blank" rel="noopener">%s</a></div>`, href, label)
	}
}

// inlineViewable reports whether a document renders natively in browsers and
// can be embedded in an iframe instead of linked.
func inlineViewable(href string) bool {
	mimeType := mime.TypeByExtension(path.Ext(href))
	return mimeType == "application/pdf" || strings.HasPrefix(mimeType, "text/")
}
