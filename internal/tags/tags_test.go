package tags

import "testing"

func TestLabel(t *testing.T) {
	tests := []struct {
		tag, want string
	}{
		{"restaurants", "Restaurants"},
		{"market_real_estate", "Real Estate"},
		{"market_vehicles", "Vehicles"},
		{"coffee-shops", "Coffee Shops"},
		{"market_", "Market"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Label(tt.tag); got != tt.want {
			t.Errorf("Label(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}

func TestBrowseLink(t *testing.T) {
	tests := []struct {
		tag, want string
	}{
		{"restaurants", "/places?category=restaurants"},
		{"market_vehicles", "/marketplace?category=vehicles"},
		{"bars & pubs", "/places?category=bars+%26+pubs"},
	}

	for _, tt := range tests {
		if got := BrowseLink(tt.tag); got != tt.want {
			t.Errorf("BrowseLink(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}

func TestFromLink(t *testing.T) {
	tests := []struct {
		link, want string
	}{
		{"/places?category=restaurants", "restaurants"},
		{"/marketplace?category=vehicles", "market_vehicles"},
		{"/places/?category=bars+%26+pubs", "bars & pubs"},
		{"/places?sort=newest", ""},
		{"/news/n1", ""},
		{"%zz", ""},
	}

	for _, tt := range tests {
		if got := FromLink(tt.link); got != tt.want {
			t.Errorf("FromLink(%q) = %q, want %q", tt.link, got, tt.want)
		}
	}

	for _, tag := range []string{"cafes", "market_real_estate"} {
		if got := FromLink(BrowseLink(tag)); got != tag {
			t.Errorf("FromLink(BrowseLink(%q)) = %q", tag, got)
		}
	}
}
