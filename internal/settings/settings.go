// Package settings models the admin-editable configuration: the subject list
// and the advertisement slots. Values are immutable; every update returns a
// new Settings and leaves the receiver untouched.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/csheth/edugenius/internal/catalog"
)

var (
	ErrEmptySubject     = errors.New("subject name is required")
	ErrDuplicateSubject = errors.New("subject already exists")
	ErrUnknownSubject   = errors.New("subject not found")
	ErrUnknownSlot      = errors.New("unknown ad slot")
)

// Banner is the strip shown above the main layout.
type Banner struct {
	Text   string `json:"text"`
	Link   string `json:"link"`
	Active bool   `json:"isActive"`
	Color  string `json:"color"`
}

// Sidebar is the promotional card next to the controls.
type Sidebar struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	Link        string `json:"link"`
	Active      bool   `json:"isActive"`
}

// AdMob carries the mobile ad unit identifiers and switches.
type AdMob struct {
	BannerActive       bool   `json:"bannerActive"`
	BannerUnitID       string `json:"bannerUnitId"`
	AppID              string `json:"appId"`
	AutoAdsActive      bool   `json:"autoAdsActive"`
	PublisherID        string `json:"publisherId"`
	InterstitialActive bool   `json:"interstitialActive"`
	InterstitialUnitID string `json:"interstitialUnitId"`
}

// AdConfig groups every advertisement slot.
type AdConfig struct {
	Banner  Banner  `json:"banner"`
	Sidebar Sidebar `json:"sidebar"`
	AdMob   AdMob   `json:"admob"`
}

// Slot names a toggleable advertisement switch.
type Slot string

const (
	SlotBanner       Slot = "banner"
	SlotSidebar      Slot = "sidebar"
	SlotAdMobBanner  Slot = "admob-banner"
	SlotAutoAds      Slot = "auto-ads"
	SlotInterstitial Slot = "interstitial"
)

// Slots lists every toggleable slot in display order.
func Slots() []Slot {
	return []Slot{SlotBanner, SlotSidebar, SlotAdMobBanner, SlotAutoAds, SlotInterstitial}
}

// Settings is the complete admin-editable configuration.
type Settings struct {
	Subjects []catalog.Subject `json:"subjects"`
	Ads      AdConfig          `json:"ads"`
}

// DefaultAds returns the stock advertisement configuration.
func DefaultAds() AdConfig {
	return AdConfig{
		Banner: Banner{
			Text:   "🚀 New WBCS Special Batch Starting Next Monday! Enroll Now & Save 40%",
			Link:   "#",
			Active: true,
			Color:  "bg-indigo-600",
		},
		Sidebar: Sidebar{
			Title:       "UPSC 2025 Test Series",
			Description: "Get access to 50+ full-length mocks curated by top educators.",
			ImageURL:    "https://images.unsplash.com/photo-1434030216411-0b793f4b4173?auto=format&fit=crop&q=80&w=200&h=120",
			Link:        "#",
			Active:      true,
		},
		AdMob: AdMob{
			BannerActive:       true,
			BannerUnitID:       "ca-app-pub-9675701397964837/9748181208",
			AppID:              "ca-app-pub-9675701397964837~4642360039",
			AutoAdsActive:      false,
			PublisherID:        "pub-9675701397964837",
			InterstitialActive: false,
			InterstitialUnitID: "ca-app-pub-9675701397964837/xxxxxxxxxx",
		},
	}
}

// Default returns the built-in subjects and ads.
func Default() Settings {
	return Settings{Subjects: catalog.DefaultSubjects(), Ads: DefaultAds()}
}

func (s Settings) clone() Settings {
	s.Subjects = append([]catalog.Subject(nil), s.Subjects...)
	return s
}

// Subject looks up a subject by id.
func (s Settings) Subject(id string) (catalog.Subject, bool) {
	for _, sub := range s.Subjects {
		if sub.ID == id {
			return sub, true
		}
	}
	return catalog.Subject{}, false
}

// WithSubject appends a subject. The name is trimmed, a blank icon falls back
// to the default and a blank colour to the default accent.
func (s Settings) WithSubject(sub catalog.Subject) (Settings, error) {
	sub.ID = strings.TrimSpace(sub.ID)
	if sub.ID == "" {
		return s, ErrEmptySubject
	}
	if _, exists := s.Subject(sub.ID); exists {
		return s, fmt.Errorf("%w: %s", ErrDuplicateSubject, sub.ID)
	}
	if strings.TrimSpace(sub.Icon) == "" {
		sub.Icon = catalog.DefaultIcon
	}
	if strings.TrimSpace(sub.Color) == "" {
		sub.Color = catalog.DefaultColor
	}
	next := s.clone()
	next.Subjects = append(next.Subjects, sub)
	return next, nil
}

// WithoutSubject removes the subject with the given id.
func (s Settings) WithoutSubject(id string) (Settings, error) {
	if _, ok := s.Subject(id); !ok {
		return s, fmt.Errorf("%w: %s", ErrUnknownSubject, id)
	}
	next := s
	next.Subjects = make([]catalog.Subject, 0, len(s.Subjects)-1)
	for _, sub := range s.Subjects {
		if sub.ID != id {
			next.Subjects = append(next.Subjects, sub)
		}
	}
	return next, nil
}

// FallbackSubject returns the subject a selection should move to when current
// is no longer available: current itself if still present, otherwise the first
// remaining subject, or "" when the list is empty.
func (s Settings) FallbackSubject(current string) string {
	if _, ok := s.Subject(current); ok {
		return current
	}
	if len(s.Subjects) == 0 {
		return ""
	}
	return s.Subjects[0].ID
}

// WithAds replaces the advertisement configuration.
func (s Settings) WithAds(ads AdConfig) Settings {
	next := s.clone()
	next.Ads = ads
	return next
}

// Toggle flips the named advertisement switch.
func (s Settings) Toggle(slot Slot) (Settings, error) {
	ads := s.Ads
	switch slot {
	case SlotBanner:
		ads.Banner.Active = !ads.Banner.Active
	case SlotSidebar:
		ads.Sidebar.Active = !ads.Sidebar.Active
	case SlotAdMobBanner:
		ads.AdMob.BannerActive = !ads.AdMob.BannerActive
	case SlotAutoAds:
		ads.AdMob.AutoAdsActive = !ads.AdMob.AutoAdsActive
	case SlotInterstitial:
		ads.AdMob.InterstitialActive = !ads.AdMob.InterstitialActive
	default:
		return s, fmt.Errorf("%w: %s", ErrUnknownSlot, slot)
	}
	return s.WithAds(ads), nil
}

// Active reports whether the named switch is on.
func (a AdConfig) Active(slot Slot) bool {
	switch slot {
	case SlotBanner:
		return a.Banner.Active
	case SlotSidebar:
		return a.Sidebar.Active
	case SlotAdMobBanner:
		return a.AdMob.BannerActive
	case SlotAutoAds:
		return a.AdMob.AutoAdsActive
	case SlotInterstitial:
		return a.AdMob.InterstitialActive
	default:
		return false
	}
}

// WithBannerText sets the banner copy.
func (s Settings) WithBannerText(text string) Settings {
	ads := s.Ads
	ads.Banner.Text = text
	return s.WithAds(ads)
}

// WithSidebarTitle sets the sidebar card title.
func (s Settings) WithSidebarTitle(title string) Settings {
	ads := s.Ads
	ads.Sidebar.Title = title
	return s.WithAds(ads)
}

// WithAdMobBannerUnit sets the AdMob banner unit id.
func (s Settings) WithAdMobBannerUnit(unitID string) Settings {
	ads := s.Ads
	ads.AdMob.BannerUnitID = strings.TrimSpace(unitID)
	return s.WithAds(ads)
}
