package region

import "strings"

// Options customizes the default registry.
type Options struct {
	// URLs overrides an adapter's upstream URL, keyed by region name.
	URLs map[string]string
	// TempDir holds downloaded archives and workbooks. Empty uses the OS default.
	TempDir string
}

func (o Options) url(region, fallback string) string {
	if u := strings.TrimSpace(o.URLs[region]); u != "" {
		return u
	}
	return fallback
}

// NewDefaultRegistry registers every supported jurisdiction.
func NewDefaultRegistry(opts Options) *Registry {
	reg := NewRegistry()
	reg.Register(&Alabama{URL: opts.url("alabama", alabamaURL)})
	reg.Register(&California{URL: opts.url("california", californiaURL)})
	reg.Register(&Colorado{BaseURL: opts.url("colorado", coloradoURL)})
	reg.Register(&Florida{URL: opts.url("florida", floridaURL)})
	reg.Register(&Massachusetts{URL: opts.url("massachusetts", massachusettsURL)})
	reg.Register(&Nevada{URL: opts.url("nevada", nevadaURL)})
	reg.Register(&NewYork{URL: opts.url("newyork", newYorkURL)})
	reg.Register(&Ohio{URL: opts.url("ohio", ohioURL)})
	reg.Register(&Ontario{BaseURL: opts.url("ontario", ontarioURL)})
	reg.Register(&Oregon{URL: opts.url("oregon", oregonURL)})
	reg.Register(&Texas{URL: opts.url("texas", texasURL)})
	reg.Register(&Vermont{URL: opts.url("vermont", vermontURL), TempDir: opts.TempDir})
	reg.Register(&Washington{URL: opts.url("washington", washingtonURL), TempDir: opts.TempDir})
	reg.Register(NewFixture())
	return reg
}
