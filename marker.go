// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package nev

import (
	"errors"
	"fmt"
	"strings"
)

// Digital marker grammar, one character per digital event:
//
//	stream    := segment*
//	segment   := '*' body
//	body      := label ':' paramlist [';'] '#'
//	           | name '=' value [';'] '#'
//	           | token '#'
//	paramlist := param (';' param)*
//	param     := key '=' value
const (
	markerStart = '*'
	markerEnd   = '#'
)

// MarkerKind is the form a digital marker segment was parsed as.
type MarkerKind uint8

const (
	// MarkerUnparsed is a segment that matched no form; its raw text is kept.
	MarkerUnparsed MarkerKind = iota
	// MarkerParameterized is "label:key=value;...#".
	MarkerParameterized
	// MarkerSingle is "name=value;#".
	MarkerSingle
	// MarkerBare is "token#".
	MarkerBare
)

func (k MarkerKind) String() string {
	switch k {
	case MarkerUnparsed:
		return "UnparsedData"
	case MarkerParameterized:
		return "parameterized"
	case MarkerSingle:
		return "single"
	case MarkerBare:
		return "bare"
	default:
		return fmt.Sprintf("marker(%d)", uint8(k))
	}
}

func (k MarkerKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Param is one key=value pair of a parameterized marker. Values are kept as
// written.
type Param struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Marker is one parsed segment of the digital marker stream. Unparsed
// segments keep their digital values in RawData, since a lone UTF-16
// surrogate in 16-bit data renders as U+FFFD in UnparsedData.
type Marker struct {
	Timestamp       uint32     `json:"timestamp"` // Timestamp of the '*' that opened the segment
	Seconds         float64    `json:"seconds"`
	InsertionReason uint8      `json:"insertionReason"`
	Kind            MarkerKind `json:"kind"`
	Label           string     `json:"label,omitempty"` // Parameterized label or single marker name
	Value           string     `json:"value,omitempty"` // Single or bare marker value
	Params          []Param    `json:"params,omitempty"`
	UnparsedData    string     `json:"unparsedData,omitempty"`
	RawData         []uint16   `json:"rawData,omitempty"`
}

// Get returns the value of the first parameter named key.
func (m *Marker) Get(key string) (string, bool) {
	for _, p := range m.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

type segment struct {
	start DigitalEvent
	text  []rune
	raw   []uint16
}

// ParseMarkers splits digital events into '*' delimited segments and parses
// each one. A segment that does not parse is returned as a MarkerUnparsed
// marker and reported in the returned errors; it never stops the parse.
func ParseMarkers(events []DigitalEvent) ([]Marker, []*MarkerError) {
	var segs []segment
	for _, ev := range events {
		if ev.Value == markerStart {
			segs = append(segs, segment{start: ev})
			continue
		}
		if len(segs) == 0 {
			// Data before the first delimiter.
			segs = append(segs, segment{start: ev})
		}
		s := &segs[len(segs)-1]
		s.text = append(s.text, rune(ev.Value))
		s.raw = append(s.raw, ev.Value)
	}

	markers := make([]Marker, 0, len(segs))
	var errs []*MarkerError
	for i, s := range segs {
		text := string(s.text)

		m, err := parseSegment(text)
		if err != nil {
			m = Marker{Kind: MarkerUnparsed, UnparsedData: text, RawData: s.raw}
			errs = append(errs, &MarkerError{
				Segment:   i,
				Timestamp: s.start.Timestamp,
				Text:      text,
				Reason:    err.Error(),
			})
		}
		m.Timestamp = s.start.Timestamp
		m.Seconds = s.start.Seconds
		m.InsertionReason = s.start.InsertionReason
		markers = append(markers, m)
	}

	return markers, errs
}

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokText
	tokColon
	tokEquals
	tokSemicolon
	tokEnd
)

var delimiters = map[rune]tokenKind{
	':':       tokColon,
	'=':       tokEquals,
	';':       tokSemicolon,
	markerEnd: tokEnd,
}

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of segment"
	case tokText:
		return "text"
	case tokColon:
		return "':'"
	case tokEquals:
		return "'='"
	case tokSemicolon:
		return "';'"
	case tokEnd:
		return "'#'"
	default:
		return "token"
	}
}

type token struct {
	kind tokenKind
	text string
}

// tokenize splits a segment into delimiters and the text runs between them.
func tokenize(s string) []token {
	var toks []token
	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			toks = append(toks, token{kind: tokText, text: run.String()})
			run.Reset()
		}
	}

	for _, r := range s {
		if kind, ok := delimiters[r]; ok {
			flush()
			toks = append(toks, token{kind: kind, text: string(r)})
			continue
		}
		run.WriteRune(r)
	}
	flush()

	return toks
}

type markerParser struct {
	toks []token
	pos  int
}

func (p *markerParser) peek() tokenKind {
	if p.pos >= len(p.toks) {
		return tokEOF
	}
	return p.toks[p.pos].kind
}

func (p *markerParser) next() token {
	if p.pos >= len(p.toks) {
		return token{kind: tokEOF}
	}
	t := p.toks[p.pos]
	p.pos++
	return t
}

func (p *markerParser) expect(kind tokenKind) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, fmt.Errorf("expected %s, found %s", kind, t.kind)
	}
	return t, nil
}

// ident reads a text token that must be an identifier.
func (p *markerParser) ident() (string, error) {
	t, err := p.expect(tokText)
	if err != nil {
		return "", err
	}
	if !isIdent(t.text) {
		return "", fmt.Errorf("invalid name %q", t.text)
	}
	return t.text, nil
}

// value reads an optional text token.
func (p *markerParser) value() string {
	if p.peek() == tokText {
		return p.next().text
	}
	return ""
}

func (p *markerParser) terminator() error {
	if p.peek() == tokSemicolon {
		p.next()
	}
	_, err := p.expect(tokEnd)
	return err
}

func parseSegment(s string) (Marker, error) {
	p := &markerParser{toks: tokenize(s)}

	name, err := p.ident()
	if err != nil {
		return Marker{}, err
	}

	var m Marker
	switch p.peek() {
	case tokColon:
		p.next()
		m = Marker{Kind: MarkerParameterized, Label: name}
		for {
			key, err := p.ident()
			if err != nil {
				return Marker{}, err
			}
			if _, err := p.expect(tokEquals); err != nil {
				return Marker{}, err
			}
			m.Params = append(m.Params, Param{Key: key, Value: p.value()})

			if p.peek() != tokSemicolon {
				break
			}
			p.next()
			if p.peek() == tokEnd {
				break
			}
		}
		if _, err := p.expect(tokEnd); err != nil {
			return Marker{}, err
		}
	case tokEquals:
		p.next()
		m = Marker{Kind: MarkerSingle, Label: name, Value: p.value()}
		if err := p.terminator(); err != nil {
			return Marker{}, err
		}
	case tokEnd:
		p.next()
		m = Marker{Kind: MarkerBare, Value: name}
	default:
		return Marker{}, fmt.Errorf("expected ':', '=' or '#' after %q, found %s", name, p.peek())
	}

	if p.peek() != tokEOF {
		return Marker{}, errors.New("trailing data after '#'")
	}
	return m, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '.', r == '-':
		default:
			return false
		}
	}
	return true
}
