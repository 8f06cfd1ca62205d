// Package display renders decoded replies for people and scripts.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cbroglie/mustache"
	"github.com/tokenwire/tokenwire/pkg/wire"
)

// Format selects how replies are written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatHex  Format = "hex"
)

// Default text templates, keyed by reply kind. Variables: kind, id, nonce,
// token, status, count, sas, gas and the entries list.
var defaultTemplates = map[wire.Kind]string{
	wire.KindIndividualTokenResponse: "{{{sas}}}\n",
	wire.KindIndividualTokenStatus:   "{{status}}\n",
	wire.KindGroupTokenResponse:      "{{{gas}}}\n",
	wire.KindGroupTokenStatus:        "{{status}}\n",
}

// Renderer writes replies in one format.
type Renderer struct {
	w        io.Writer
	format   Format
	template *mustache.Template
}

// New creates a renderer. A non-empty tmpl replaces the default text
// template for every reply kind.
func New(w io.Writer, format Format, tmpl string) (*Renderer, error) {
	r := &Renderer{w: w, format: format}
	switch format {
	case FormatText, FormatJSON, FormatHex:
	case "":
		r.format = FormatText
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}

	if tmpl != "" {
		t, err := mustache.ParseString(tmpl)
		if err != nil {
			return nil, fmt.Errorf("invalid output template: %w", err)
		}
		r.template = t
	}
	return r, nil
}

// Entry is the display form of one SAS.
type Entry struct {
	ID    string `json:"id"`
	Nonce uint32 `json:"nonce"`
	Token string `json:"token"`
	SAS   string `json:"sas"`
}

// Reply is the display form of any decoded reply.
type Reply struct {
	Kind    string  `json:"kind"`
	ID      string  `json:"id,omitempty"`
	Nonce   *uint32 `json:"nonce,omitempty"`
	Token   string  `json:"token"`
	Status  *byte   `json:"status,omitempty"`
	Count   int     `json:"count,omitempty"`
	Entries []Entry `json:"entries,omitempty"`
	SAS     string  `json:"sas,omitempty"`
	GAS     string  `json:"gas,omitempty"`

	kind wire.Kind
	raw  []byte
}

// NewReply converts a decoded reply packet into its display form.
func NewReply(p wire.Packet) (*Reply, error) {
	r := &Reply{Kind: p.Kind().String(), kind: p.Kind(), raw: p.Marshal()}
	switch v := p.(type) {
	case *wire.IndividualTokenResponse:
		r.fillSAS(v.SAS)
	case *wire.IndividualTokenStatus:
		r.fillSAS(v.SAS)
		r.Status = &v.Status
	case *wire.GroupTokenResponse:
		r.fillGroup(v.Entries, v.Token)
	case *wire.GroupTokenStatus:
		r.fillGroup(v.Entries, v.Token)
		r.Status = &v.Status
	default:
		return nil, fmt.Errorf("cannot display %s", p.Kind())
	}
	return r, nil
}

func (r *Reply) fillSAS(sas wire.SAS) {
	nonce := sas.Nonce
	r.ID = sas.ID.String()
	r.Nonce = &nonce
	r.Token = sas.Token.Trimmed()
	r.SAS = sas.String()
}

func (r *Reply) fillGroup(entries []wire.SAS, token wire.Token) {
	r.Count = len(entries)
	r.Token = token.Trimmed()
	for _, sas := range entries {
		r.Entries = append(r.Entries, Entry{
			ID:    sas.ID.String(),
			Nonce: sas.Nonce,
			Token: sas.Token.Trimmed(),
			SAS:   sas.String(),
		})
	}
	gas := &wire.GAS{Entries: entries, Token: token}
	r.GAS = gas.String()
}

func (r *Reply) context() map[string]any {
	ctx := map[string]any{
		"kind":  r.Kind,
		"id":    r.ID,
		"token": r.Token,
		"count": r.Count,
		"sas":   r.SAS,
		"gas":   r.GAS,
	}
	if r.Nonce != nil {
		ctx["nonce"] = *r.Nonce
	}
	if r.Status != nil {
		ctx["status"] = *r.Status
	}
	// Template keys are lowercase, so entries go in as maps.
	entries := make([]map[string]any, 0, len(r.Entries))
	for _, e := range r.Entries {
		entries = append(entries, map[string]any{"id": e.ID, "nonce": e.Nonce, "token": e.Token, "sas": e.SAS})
	}
	ctx["entries"] = entries
	return ctx
}

// Render writes p in the renderer's format.
func (r *Renderer) Render(p wire.Packet) error {
	reply, err := NewReply(p)
	if err != nil {
		return err
	}

	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")
		return enc.Encode(reply)
	case FormatHex:
		Title(r.w, reply.Kind)
		HexDump(r.w, reply.raw)
		return nil
	}

	tmpl := r.template
	if tmpl == nil {
		tmpl, err = mustache.ParseString(defaultTemplates[reply.kind])
		if err != nil {
			return err
		}
	}
	out, err := tmpl.Render(reply.context())
	if err != nil {
		return fmt.Errorf("render %s: %w", reply.Kind, err)
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	_, err = io.WriteString(r.w, out)
	return err
}
