// Package cii maps the canonical invoice onto the UN/CEFACT
// Cross-Industry Invoice syntax of the EN 16931 guideline and back.
//
// The renderer walks the schema skeleton in a fixed order so that two
// serializations of the same invoice are byte-identical; the parser is the
// renderer's inverse on the round-trip subset and matches element local
// names so that documents from other generators parse regardless of the
// namespace prefixes they chose.
package cii

import (
	"strings"

	"github.com/beevik/etree"
)

// CII namespaces, Factur-X 1.0 / EN 16931.
const (
	NamespaceRSM = "urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"
	NamespaceQDT = "urn:un:unece:uncefact:data:standard:QualifiedDataType:100"
	NamespaceRAM = "urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100"
	NamespaceUDT = "urn:un:unece:uncefact:data:standard:UnqualifiedDataType:100"
)

// dateFormat is the CII qualifier for calendar dates.
const dateFormat = "102"

// AttachmentName is the embedded-file name mandated by Factur-X.
const AttachmentName = "factur-x.xml"

// IsCII reports whether data parses as a Cross-Industry Invoice document.
// Structural check only; no schema validation.
func IsCII(data []byte) bool {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return false
	}
	root := doc.Root()
	return root != nil && root.Tag == "CrossIndustryInvoice"
}

// child returns the first child element with the given local name,
// ignoring namespace prefixes.
func child(e *etree.Element, tag string) *etree.Element {
	if e == nil {
		return nil
	}
	for _, c := range e.ChildElements() {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// children returns all child elements with the given local name.
func children(e *etree.Element, tag string) []*etree.Element {
	if e == nil {
		return nil
	}
	var out []*etree.Element
	for _, c := range e.ChildElements() {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// find walks a path of local names and returns the element at its end.
func find(e *etree.Element, path ...string) *etree.Element {
	for _, tag := range path {
		e = child(e, tag)
		if e == nil {
			return nil
		}
	}
	return e
}

// textOf returns the trimmed text at the end of a path, or "".
func textOf(e *etree.Element, path ...string) string {
	t := find(e, path...)
	if t == nil {
		return ""
	}
	return strings.TrimSpace(t.Text())
}

// attrOf returns the value of an attribute, matching its local name.
func attrOf(e *etree.Element, name string) string {
	if e == nil {
		return ""
	}
	for _, a := range e.Attr {
		if a.Key == name {
			return a.Value
		}
	}
	return ""
}
