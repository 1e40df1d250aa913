// Package parser turns raw page bytes into a structured document model.
// Parsing never fails: malformed or incomplete HTML degrades to empty
// fields rather than errors.
package parser

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// Header is one heading element in document order.
type Header struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Image is one img element with its alt state.
type Image struct {
	Src    string `json:"src"`
	Alt    string `json:"alt"`
	HasAlt bool   `json:"hasAlt"`
}

// Link is one anchor with a resolvable href.
type Link struct {
	Href     string `json:"href"`
	Text     string `json:"text"`
	External bool   `json:"external"`
}

// Document is the parsed page model consumed by the signal extractors.
// All fields are read-only after Parse returns.
type Document struct {
	Title              string   `json:"title"`
	HasTitle           bool     `json:"hasTitle"`
	MetaDescription    string   `json:"metaDescription"`
	HasMetaDescription bool     `json:"hasMetaDescription"`
	MetaRobots         string   `json:"metaRobots"`
	Viewport           string   `json:"viewport"`
	Canonical          string   `json:"canonical"`
	Headers            []Header `json:"headers"`
	BodyText           string   `json:"-"`
	Images             []Image  `json:"images"`
	Links              []Link   `json:"links"`
	WordCount          int      `json:"wordCount"`
	ParagraphCount     int      `json:"paragraphCount"`
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Parse builds the document model from raw bytes. contentType guides
// charset detection; undecodable input falls back to the raw bytes.
// baseURL resolves relative links and classifies them as internal or
// external.
func Parse(baseURL string, data []byte, contentType string) *Document {
	model := &Document{}

	reader, err := charset.NewReader(bytes.NewReader(data), contentType)
	if err != nil {
		reader = bytes.NewReader(data)
	}
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return model
	}

	// Script, style and noscript content must never leak into body
	// text or word counts.
	doc.Find("script, style, noscript").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	model.Title = title
	model.HasTitle = title != ""

	if desc, ok := doc.Find("meta[name='description']").Attr("content"); ok {
		model.MetaDescription = strings.TrimSpace(desc)
		model.HasMetaDescription = model.MetaDescription != ""
	}
	model.MetaRobots, _ = doc.Find("meta[name='robots']").Attr("content")
	model.Viewport, _ = doc.Find("meta[name='viewport']").Attr("content")
	model.Canonical, _ = doc.Find("link[rel='canonical']").Attr("href")

	// One combined selector keeps headings in document order across
	// levels, which the hierarchy analysis depends on.
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		if len(name) != 2 || name[0] != 'h' {
			return
		}
		model.Headers = append(model.Headers, Header{
			Level: int(name[1] - '0'),
			Text:  strings.TrimSpace(s.Text()),
		})
	})

	body := doc.Find("body")
	var text string
	if body.Length() > 0 {
		text = body.Text()
	} else {
		text = doc.Text()
	}
	model.BodyText = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	model.WordCount = len(strings.Fields(model.BodyText))

	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if strings.TrimSpace(s.Text()) != "" {
			model.ParagraphCount++
		}
	})

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		alt, hasAlt := s.Attr("alt")
		model.Images = append(model.Images, Image{
			Src:    src,
			Alt:    strings.TrimSpace(alt),
			HasAlt: hasAlt,
		})
	})

	base, baseErr := url.Parse(baseURL)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
			return
		}
		link := Link{Href: href, Text: strings.TrimSpace(s.Text())}
		if baseErr == nil {
			if resolved, err := base.Parse(href); err == nil {
				link.Href = resolved.String()
				link.External = resolved.Host != "" && resolved.Host != base.Host
			}
		}
		model.Links = append(model.Links, link)
	})

	return model
}
