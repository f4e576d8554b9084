// internal/content/types.go
package content

// SectionContent is the validated content of one section. The concrete type
// is determined by the section type.
type SectionContent interface {
	SectionType() string
}

type CTA struct {
	Text string `json:"text"`
	Href string `json:"href,omitempty"`
}

type HeroContent struct {
	Headline        string `json:"headline"`
	Subheadline     string `json:"subheadline,omitempty"`
	PrimaryCTA      *CTA   `json:"primaryCta,omitempty"`
	SecondaryCTA    *CTA   `json:"secondaryCta,omitempty"`
	BackgroundImage string `json:"backgroundImage,omitempty"`
}

type ServiceItem struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

type ServicesContent struct {
	Heading string        `json:"heading,omitempty"`
	Items   []ServiceItem `json:"items"`
}

type AboutContent struct {
	Heading    string   `json:"heading,omitempty"`
	Body       string   `json:"body"`
	Highlights []string `json:"highlights,omitempty"`
	ImageURL   string   `json:"imageUrl,omitempty"`
}

type ProcessStep struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type ProcessContent struct {
	Heading string        `json:"heading,omitempty"`
	Steps   []ProcessStep `json:"steps"`
}

type Testimonial struct {
	Quote  string `json:"quote"`
	Author string `json:"author"`
	Role   string `json:"role,omitempty"`
	Rating int    `json:"rating,omitempty"`
}

type TestimonialsContent struct {
	Heading      string        `json:"heading,omitempty"`
	Testimonials []Testimonial `json:"testimonials"`
}

type Project struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Link        string `json:"link,omitempty"`
}

type PortfolioContent struct {
	Heading  string    `json:"heading,omitempty"`
	Projects []Project `json:"projects"`
}

type ContactContent struct {
	Heading  string `json:"heading,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	ShowForm bool   `json:"showForm"`
}

type MenuItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price,omitempty"`
}

type MenuCategory struct {
	Name  string     `json:"name"`
	Items []MenuItem `json:"items"`
}

type MenuContent struct {
	Heading    string         `json:"heading,omitempty"`
	Categories []MenuCategory `json:"categories"`
}

type LocationContent struct {
	Heading string   `json:"heading,omitempty"`
	Address string   `json:"address"`
	Hours   []string `json:"hours,omitempty"`
	MapURL  string   `json:"mapUrl,omitempty"`
}

type GalleryImage struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

type GalleryContent struct {
	Heading string         `json:"heading,omitempty"`
	Images  []GalleryImage `json:"images"`
}

// GenericContent carries sections without a dedicated record (team, pricing, faq, cta).
type GenericContent struct {
	Type   string                 `json:"-"`
	Fields map[string]interface{} `json:"fields"`
}

func (HeroContent) SectionType() string         { return "hero" }
func (ServicesContent) SectionType() string     { return "services" }
func (AboutContent) SectionType() string        { return "about" }
func (ProcessContent) SectionType() string      { return "process" }
func (TestimonialsContent) SectionType() string { return "testimonials" }
func (PortfolioContent) SectionType() string    { return "portfolio" }
func (ContactContent) SectionType() string      { return "contact" }
func (MenuContent) SectionType() string         { return "menu" }
func (LocationContent) SectionType() string     { return "location" }
func (GalleryContent) SectionType() string      { return "gallery" }
func (g GenericContent) SectionType() string    { return g.Type }
