package market

import (
	"github.com/biter777/countries"
	"github.com/go-faster/errors"
	"golang.org/x/text/language"
)

// TwoLetterCountry converts a country name, alpha-2 or alpha-3 code to its
// ISO 3166-1 alpha-2 form. It returns an empty string for unknown input.
func TwoLetterCountry(code string) string {
	c := countries.ByName(code)
	if c == countries.Unknown {
		return ""
	}
	return c.Alpha2()
}

// ThreeLetterCountry converts a country name, alpha-2 or alpha-3 code to its
// ISO 3166-1 alpha-3 form. The gateway reports two-letter codes in shipping
// details; the commerce side expects three-letter codes.
func ThreeLetterCountry(code string) string {
	c := countries.ByName(code)
	if c == countries.Unknown {
		return ""
	}
	return c.Alpha3()
}

// RegionFromCulture derives the two-letter region code from a BCP 47 culture
// tag such as "sv-SE".
func RegionFromCulture(culture string) (string, error) {
	tag, err := language.Parse(culture)
	if err != nil {
		return "", errors.Wrapf(err, "parse culture %q", culture)
	}
	region, _ := tag.Region()
	if !region.IsCountry() {
		return "", errors.Errorf("culture %q has no country region", culture)
	}
	return region.String(), nil
}
