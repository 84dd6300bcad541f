// Package document defines the storefront template document: the single
// nested value a vendor's storefront editor operates on. The document is
// stored and transmitted as JSON; edits go through the path-based updater
// in path.go rather than partial merges.
package document

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Document describes one vendor's storefront template content and styling.
// It carries no server-assigned identity; persistence is keyed by the
// vendor ID supplied alongside the payload.
type Document struct {
	Name         string     `json:"name"`
	PreviewImage string     `json:"preview_image"`
	Components   Components `json:"components"`
}

// Components groups the per-page content blocks.
type Components struct {
	Logo        string       `json:"logo"`
	HomePage    HomePage     `json:"home_page"`
	AboutPage   AboutPage    `json:"about_page"`
	ContactPage ContactPage  `json:"contact_page"`
	CustomPages []CustomPage `json:"custom_pages,omitempty"`
}

// HomePage holds the hero texts, CTA, description block, and optional
// theme/style overrides for the storefront landing page.
type HomePage struct {
	HeaderText    string           `json:"header_text"`
	SubheaderText string           `json:"subheader_text"`
	ButtonText    string           `json:"button_text"`
	Description   DescriptionBlock `json:"description"`
	SectionOrder  []string         `json:"section_order,omitempty"`
	Theme         *Theme           `json:"theme,omitempty"`
	HeroStyle     *ElementStyle    `json:"hero_style,omitempty"`
	ProductsStyle *ElementStyle    `json:"products_style,omitempty"`
}

// DescriptionBlock is the headline/summary strip with two labeled stats.
type DescriptionBlock struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	StatOne  Stat   `json:"stat_one"`
	StatTwo  Stat   `json:"stat_two"`
}

// Stat is a numeric figure with a label ("500+ Products").
type Stat struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Theme holds storefront-wide color and type-scale settings.
type Theme struct {
	AccentColor string  `json:"accent_color"`
	BannerColor string  `json:"banner_color"`
	FontScale   float64 `json:"font_scale"`
}

// ElementStyle is a per-element color/size override.
type ElementStyle struct {
	Color string `json:"color,omitempty"`
	Size  string `json:"size,omitempty"`
}

// AboutPage holds the about-us page content.
type AboutPage struct {
	Hero   Hero         `json:"hero"`
	Story  Story        `json:"story"`
	Values []ValueItem  `json:"values"`
	Team   []TeamMember `json:"team"`
	Stats  []Stat       `json:"stats"`
}

// Hero is a background image with title and subtitle, shared by the
// about and contact pages.
type Hero struct {
	BackgroundImage string `json:"background_image"`
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle"`
}

// Story is the "our story" block. Paragraphs are order-significant and
// may contain Markdown.
type Story struct {
	Heading    string   `json:"heading"`
	Paragraphs []string `json:"paragraphs"`
	Image      string   `json:"image"`
}

// ValueItem is one company-value card.
type ValueItem struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TeamMember is one entry in the team grid.
type TeamMember struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Image string `json:"image"`
}

// ContactPage holds the contact page content.
type ContactPage struct {
	Hero        Hero              `json:"hero"`
	SectionTwo  SectionTwo        `json:"section_2"`
	ContactInfo []ContactInfoItem `json:"contactInfo"`
	ContactForm ContactForm       `json:"contactForm"`
	VisitInfo   VisitInfo         `json:"visitInfo"`
	FAQSection  FAQSection        `json:"faqSection"`
	SocialMedia SocialMedia       `json:"socialMedia"`
}

// SectionTwo is the secondary heading pair plus a map location. Lat and
// Long are stored as strings and parsed only at render time.
type SectionTwo struct {
	Heading    string `json:"heading"`
	Subheading string `json:"subheading"`
	Lat        string `json:"lat"`
	Long       string `json:"long"`
}

// ContactInfoItem is one contact detail card (phone, email, address, ...).
type ContactInfoItem struct {
	Icon    string `json:"icon"`
	Title   string `json:"title"`
	Details string `json:"details"`
}

// ContactForm describes the contact form layout.
type ContactForm struct {
	Heading     string      `json:"heading"`
	Description string      `json:"description"`
	Fields      []FormField `json:"fields"`
	ButtonText  string      `json:"button_text"`
}

// FormField is one input in the contact form, in display order.
type FormField struct {
	Label       string `json:"label"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Placeholder string `json:"placeholder"`
	Required    bool   `json:"required"`
}

// VisitInfo is the "visit us" block with an ordered reasons list.
type VisitInfo struct {
	Heading        string   `json:"heading"`
	Description    string   `json:"description"`
	MapImage       string   `json:"map_image"`
	ReasonsHeading string   `json:"reasons_heading"`
	Reasons        []string `json:"reasons"`
}

// FAQSection holds the FAQ accordion content.
type FAQSection struct {
	Heading    string `json:"heading"`
	Subheading string `json:"subheading"`
	FAQs       []FAQ  `json:"faqs"`
}

// FAQ is one question/answer pair.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// SocialMedia holds the four fixed platform URLs.
type SocialMedia struct {
	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
	Twitter   string `json:"twitter"`
	YouTube   string `json:"youtube"`
}

// CustomPage is an optional vendor-defined page made of ordered sections.
type CustomPage struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Slug      string        `json:"slug"`
	Published bool          `json:"published"`
	Sections  []PageSection `json:"sections"`
}

// SectionType tags a custom page section with its renderer.
type SectionType string

const (
	SectionHero         SectionType = "hero"
	SectionImage        SectionType = "image"
	SectionFeatures     SectionType = "features"
	SectionCTA          SectionType = "cta"
	SectionGallery      SectionType = "gallery"
	SectionPricing      SectionType = "pricing"
	SectionFAQ          SectionType = "faq"
	SectionTestimonials SectionType = "testimonials"
	SectionText         SectionType = "text"
)

// PageSection is one region of a custom page: a type tag, a free-form
// data bag interpreted by the renderer for that type, and optional
// style overrides.
type PageSection struct {
	ID    string         `json:"id"`
	Type  SectionType    `json:"type"`
	Data  map[string]any `json:"data"`
	Style *SectionStyle  `json:"style,omitempty"`
}

// SectionStyle is a per-section visual override.
type SectionStyle struct {
	TextColor       string `json:"text_color,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
	FontSize        string `json:"font_size,omitempty"`
	ButtonColor     string `json:"button_color,omitempty"`
}

// Default returns the seeded initial document. Every list field starts
// with one blank row so the editor always has something to render, and
// every image field is the empty string (no image).
func Default() *Document {
	return &Document{
		Name: "My Storefront",
		Components: Components{
			HomePage: HomePage{
				Description: DescriptionBlock{
					StatOne: Stat{},
					StatTwo: Stat{},
				},
			},
			AboutPage: AboutPage{
				Story:  Story{Paragraphs: []string{""}},
				Values: []ValueItem{{}},
				Team:   []TeamMember{{}},
				Stats:  []Stat{{}},
			},
			ContactPage: ContactPage{
				ContactInfo: []ContactInfoItem{{}},
				ContactForm: ContactForm{
					Fields: []FormField{
						{Label: "Name", Name: "name", Type: "text", Required: true},
						{Label: "Email", Name: "email", Type: "email", Required: true},
						{Label: "Message", Name: "message", Type: "textarea", Required: true},
					},
				},
				VisitInfo:  VisitInfo{Reasons: []string{""}},
				FAQSection: FAQSection{FAQs: []FAQ{{}}},
			},
		},
	}
}

// Tree returns the document as a generic JSON tree (maps and slices),
// the form the path updater operates on.
func (d *Document) Tree() (map[string]any, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("document to tree: %w", err)
	}
	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("document to tree: %w", err)
	}
	return tree, nil
}

// FromTree converts a JSON tree back into a typed Document.
func FromTree(tree map[string]any) (*Document, error) {
	raw, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("tree to document: %w", err)
	}
	var d Document
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("tree to document: %w", err)
	}
	return &d, nil
}

// Parse decodes a raw JSON document payload.
func Parse(raw []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &d, nil
}

// Location parses the contact page's lat/long strings. An unparsable or
// zero coordinate means "no location" and the map block is omitted.
func (s SectionTwo) Location() (lat, long float64, ok bool) {
	lat, errLat := strconv.ParseFloat(s.Lat, 64)
	long, errLong := strconv.ParseFloat(s.Long, 64)
	if errLat != nil || errLong != nil {
		return 0, 0, false
	}
	if lat == 0 && long == 0 {
		return 0, 0, false
	}
	return lat, long, true
}
