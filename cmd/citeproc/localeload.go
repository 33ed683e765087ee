package main

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/citeproc-go/citeproc/locale"
)

// locale/locale.go is deliberately silent on how a *locale.Locale gets
// built from a CSL locale XML file (the locale file loader is an external
// collaborator). Nothing in the domain stack pulls in a third-party XML
// library, and style/rawxml.go's parser exists to keep byte-offset spans
// for style diagnostics, a concern this loader doesn't have, so this is
// plain stdlib encoding/xml, unmarshaled directly into a shape matching
// the <locale> schema.

type xmlLocale struct {
	XMLLang      string         `xml:"http://www.w3.org/XML/1998/namespace lang,attr"`
	StyleOptions []xmlAttrsOnly `xml:"style-options"`
	Terms        []xmlTerm      `xml:"terms>term"`
}

type xmlAttrsOnly struct {
	Attrs []xml.Attr `xml:",any,attr"`
}

type xmlTerm struct {
	Name     string `xml:"name,attr"`
	Form     string `xml:"form,attr"`
	Gender   string `xml:"gender,attr"`
	Single   string `xml:"single"`
	Multiple string `xml:"multiple"`
	Text     string `xml:",chardata"`
}

func parseLocaleXML(lang string, data []byte) (*locale.Locale, error) {
	var x xmlLocale
	if err := xml.Unmarshal(data, &x); err != nil {
		return nil, fmt.Errorf("parsing locale %q: %w", lang, err)
	}

	tag := x.XMLLang
	if tag == "" {
		tag = lang
	}
	l := locale.NewLocale(tag)

	for _, opts := range x.StyleOptions {
		for _, a := range opts.Attrs {
			l.Options[a.Name.Local] = a.Value
		}
	}

	for _, t := range x.Terms {
		form := parseForm(t.Form)
		switch {
		case t.Single != "" || t.Multiple != "":
			l.AddTerm(t.Name, form, locale.Term{Singular: t.Single, Plural: t.Multiple, Gender: t.Gender})
		default:
			l.AddTerm(t.Name, form, locale.Term{Singular: trimTermText(t.Text), Gender: t.Gender})
		}
	}

	return l, nil
}

func trimTermText(s string) string {
	start, end := 0, len(s)
	for start < end && isXMLSpace(s[start]) {
		start++
	}
	for end > start && isXMLSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isXMLSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func parseForm(form string) locale.Form {
	switch form {
	case "short":
		return locale.FormShort
	case "verb":
		return locale.FormVerb
	case "verb-short":
		return locale.FormVerbShort
	case "symbol":
		return locale.FormSymbol
	default:
		return locale.FormLong
	}
}

// fileLocaleFetcher builds a citeproc.LocaleFetcher that reads
// "locales-<lang>.xml" out of dir, the naming convention the official CSL
// locale repository uses (and the one a style's default-locale/xml:lang
// attribute resolves against).
func fileLocaleFetcher(dir string) func(lang string) (*locale.Locale, error) {
	return func(lang string) (*locale.Locale, error) {
		path := filepath.Join(dir, "locales-"+lang+".xml")
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return parseLocaleXML(lang, data)
	}
}
