package validate

import (
	"encoding/xml"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// CleanHTML walks r's DOM and collects visible text, skipping <script> and
// <style> subtrees, splitting on newlines and dropping empty lines —
// a direct idiomatic port of requests_response_text_html (BeautifulSoup's
// get_text(separator="\n"), strip=True in the original) onto
// golang.org/x/net/html.
func CleanHTML(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "script", "style":
				return
			}
		}
		if n.Type == html.TextNode {
			for _, part := range strings.Split(n.Data, "\n") {
				part = strings.TrimSpace(part)
				if part != "" {
					lines = append(lines, part)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return lines, nil
}

// XMLToMap decodes r generically into nested map[string]any/[]any, the way
// xmltodict.parse renders an XML document in the original: element
// attributes are keyed "@name", text content for an element that mixes
// attributes/children with character data is keyed "#text". No Go binding
// of xmltodict exists in the retrieved example pack, so this is a
// behavioral port built directly on encoding/xml.Decoder.
func XMLToMap(r io.Reader) (map[string]any, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			val, err := decodeElement(dec, start)
			if err != nil {
				return nil, err
			}
			return map[string]any{start.Name.Local: val}, nil
		}
	}
}

func decodeElement(dec *xml.Decoder, start xml.StartElement) (any, error) {
	node := map[string]any{}
	for _, attr := range start.Attr {
		node["@"+attr.Name.Local] = attr.Value
	}

	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeElement(dec, t)
			if err != nil {
				return nil, err
			}
			key := t.Name.Local
			if existing, ok := node[key]; ok {
				switch v := existing.(type) {
				case []any:
					node[key] = append(v, child)
				default:
					node[key] = []any{v, child}
				}
			} else {
				node[key] = child
			}
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			trimmed := strings.TrimSpace(text.String())
			if len(node) == 0 {
				return trimmed, nil
			}
			if trimmed != "" {
				node["#text"] = trimmed
			}
			return node, nil
		}
	}
}
