// Package printing builds the print action's document source and renders
// the printable documents it points at.
package printing

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"
)

type Kind string

const (
	Invoice     Kind = "Invoice"
	PackingSlip Kind = "Packing Slip"
)

const Path = "/print"

var ErrUnknownKind = errors.New("unknown print type")

// Kinds lists the supported documents in print order.
var Kinds = []Kind{Invoice, PackingSlip}

// Selection is what the merchant ticked in the print dialog.
type Selection struct {
	Invoice     bool
	PackingSlip bool
}

// Kinds returns the selected documents in print order.
func (s Selection) Kinds() []Kind {
	var out []Kind
	if s.Invoice {
		out = append(out, Invoice)
	}
	if s.PackingSlip {
		out = append(out, PackingSlip)
	}
	return out
}

// Source returns the document URL for an order, or "" when nothing is
// selected (the host then disables printing).
func Source(orderID string, sel Selection) string {
	kinds := sel.Kinds()
	if len(kinds) == 0 {
		return ""
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	q := url.Values{}
	q.Set("printType", strings.Join(names, ","))
	q.Set("orderId", orderID)
	return Path + "?" + q.Encode()
}

// ParseKinds reads a comma-separated printType value.
func ParseKinds(printType string) ([]Kind, error) {
	var out []Kind
	for _, part := range strings.Split(printType, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k := Kind(part)
		if k != Invoice && k != PackingSlip {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKind, part)
		}
		out = append(out, k)
	}
	return out, nil
}

var docTemplate = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.OrderID}}</title>
<style>
  section { page-break-after: always; font-family: sans-serif; }
  section:last-child { page-break-after: auto; }
</style>
</head>
<body>
{{- range .Kinds}}
<section>
  <h1>{{.}}</h1>
  <p>Order {{$.OrderID}}</p>
</section>
{{- end}}
</body>
</html>
`))

// Render writes one printable HTML page per document kind.
func Render(w io.Writer, orderID string, kinds []Kind) error {
	if len(kinds) == 0 {
		return fmt.Errorf("render: no documents selected")
	}
	return docTemplate.Execute(w, struct {
		OrderID string
		Kinds   []Kind
	}{orderID, kinds})
}
