package scorm

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// recognizedLOMKeys are the top-level metadata keys with a documented XML
// mapping. Anything else is preserved under <extra>.
var recognizedLOMKeys = map[string]bool{
	"id":              true,
	"title":           true,
	"language":        true,
	"description":     true,
	"keywords":        true,
	"coverage":        true,
	"lifecycle":       true,
	"educational":     true,
	"rights":          true,
	"classifications": true,
	"relations":       true,
}

// buildLOMXML mirrors the metadata tree into a LOM-shaped XML document.
// This is not a full IEEE LOM schema implementation; the guarantee is that
// every top-level key, and every entry of a known list field, survives in a
// recoverable form. Fields whose shape does not match the documented
// mapping degrade to the <extra> container instead of failing the build.
func buildLOMXML(tree map[string]any) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("lom")

	// Keys routed to <extra>: unrecognized ones plus recognized ones whose
	// value has an unexpected shape.
	extras := make(map[string]any)
	for key, value := range tree {
		if !recognizedLOMKeys[key] {
			extras[key] = value
		}
	}

	general := root.CreateElement("general")
	addText(general, "identifier", tree["id"])
	addText(general, "title", tree["title"])
	addText(general, "language", tree["language"])
	addText(general, "description", tree["description"])
	addKeywords(general, tree["keywords"])
	addText(general, "coverage", tree["coverage"])

	if raw, ok := tree["lifecycle"]; ok && !isEmpty(raw) {
		if lc, ok := asMap(raw); ok {
			addLifecycle(root, lc)
		} else {
			extras["lifecycle"] = raw
		}
	}

	if raw, ok := tree["educational"]; ok && !isEmpty(raw) {
		addEducational(root, raw)
	}

	if raw, ok := tree["rights"]; ok && !isEmpty(raw) {
		if rm, ok := asMap(raw); ok {
			addEntries(root.CreateElement("rights"), rm)
		} else {
			extras["rights"] = raw
		}
	}

	addRecordList(root, "classifications", "classification", tree["classifications"])
	addRecordList(root, "relations", "relation", tree["relations"])

	if len(extras) > 0 {
		addExtras(root, extras)
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

func addLifecycle(root *etree.Element, lc map[string]any) {
	node := root.CreateElement("lifecycle")
	addText(node, "version", lc["version"])
	addText(node, "status", lc["status"])

	raw, ok := lc["contributors"]
	if !ok || isEmpty(raw) {
		return
	}
	list, ok := asSlice(raw)
	if !ok || len(list) == 0 {
		return
	}
	contribs := node.CreateElement("contributors")
	for _, entry := range list {
		cnode := contribs.CreateElement("contributor")
		if cm, ok := asMap(entry); ok {
			addText(cnode, "role", cm["role"])
			addText(cnode, "entity", cm["entity"])
			addText(cnode, "date", cm["date"])
		} else {
			cnode.SetText(flattenValue(entry))
		}
	}
}

// addEducational emits one <entry> per record; a single mapping is treated
// as a one-element list, matching the serializer's two shapes for this field.
func addEducational(root *etree.Element, raw any) {
	var entries []any
	if list, ok := asSlice(raw); ok {
		entries = list
	} else {
		entries = []any{raw}
	}
	node := root.CreateElement("educational")
	for _, entry := range entries {
		enode := node.CreateElement("entry")
		if em, ok := asMap(entry); ok {
			addEntries(enode, em)
		} else {
			enode.SetText(flattenValue(entry))
		}
	}
}

// addRecordList emits <wrapper><item .../></wrapper> for a list-of-records
// field. An empty or missing list omits the wrapper entirely.
func addRecordList(root *etree.Element, wrapper, item string, raw any) {
	if raw == nil || isEmpty(raw) {
		return
	}
	list, ok := asSlice(raw)
	if !ok {
		list = []any{raw}
	}
	if len(list) == 0 {
		return
	}
	node := root.CreateElement(wrapper)
	for _, entry := range list {
		enode := node.CreateElement(item)
		if em, ok := asMap(entry); ok {
			addEntries(enode, em)
		} else {
			enode.SetText(flattenValue(entry))
		}
	}
}

func addKeywords(general *etree.Element, raw any) {
	if raw == nil || isEmpty(raw) {
		return
	}
	node := general.CreateElement("keywords")
	if list, ok := asSlice(raw); ok {
		for _, kw := range list {
			addText(node, "keyword", kw)
		}
		return
	}
	// Comma-separated string form.
	for _, kw := range strings.Split(scalarText(raw), ",") {
		addText(node, "keyword", kw)
	}
}

// addExtras preserves values with no documented mapping. Scalars become text
// nodes; composite values are flattened to compact JSON text so nothing is
// silently dropped.
func addExtras(root *etree.Element, extras map[string]any) {
	node := root.CreateElement("extra")
	keys := make([]string, 0, len(extras))
	for key := range extras {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := extras[key]
		switch value.(type) {
		case map[string]any, []any:
			node.CreateElement(key).SetText(flattenValue(value))
		default:
			addText(node, key, value)
		}
	}
}

// addEntries adds one child element per key with scalar text, in sorted key
// order for determinism. Composite values are flattened to JSON text.
func addEntries(parent *etree.Element, entries map[string]any) {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		switch entries[key].(type) {
		case map[string]any, []any:
			parent.CreateElement(key).SetText(flattenValue(entries[key]))
		default:
			addText(parent, key, entries[key])
		}
	}
}

// addText adds <tag>text</tag> unless the value is nil or blank.
func addText(parent *etree.Element, tag string, value any) {
	if value == nil {
		return
	}
	text := strings.TrimSpace(scalarText(value))
	if text == "" {
		return
	}
	parent.CreateElement(tag).SetText(text)
}

func scalarText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		// JSON numbers decode to float64; render integers without a point.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", value)
	}
}

// flattenValue renders a composite value as compact JSON text.
func flattenValue(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(data)
}

func asMap(value any) (map[string]any, bool) {
	m, ok := value.(map[string]any)
	return m, ok
}

func asSlice(value any) ([]any, bool) {
	s, ok := value.([]any)
	return s, ok
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	}
	return false
}
