package mondialrelay

import (
	"fmt"
	"regexp"
	"strings"
)

// Carrier limits applied before any request leaves the client.
const (
	MaxWeightGrams = 30000
	MinWeightGrams = 1
	MaxDimensionCm = 150
	MaxCODAmount   = 3000
	MaxAddressLine = 32
	MaxCityLen     = 32
	MaxEmailLen    = 70
	MinEnseigneLen = 2
	MaxEnseigneLen = 8
	MinPhoneDigits = 10
	MaxPhoneDigits = 15
)

// SupportedCountries maps the country codes the carrier serves to their
// French names.
var SupportedCountries = map[string]string{
	"FR": "France",
	"BE": "Belgique",
	"LU": "Luxembourg",
	"NL": "Pays-Bas",
	"ES": "Espagne",
	"PT": "Portugal",
	"IT": "Italie",
	"DE": "Allemagne",
	"AT": "Autriche",
}

// CountryName returns the French name of a supported country, or the
// code itself for an unknown one.
func CountryName(code string) string {
	if name, ok := SupportedCountries[code]; ok {
		return name
	}
	return code
}

// SupportedLanguages lists the language codes accepted on expeditions.
var SupportedLanguages = []string{"FR", "NL", "EN", "ES", "DE", "IT"}

var postalPatterns = map[string]*regexp.Regexp{
	"FR": regexp.MustCompile(`^[0-9]{5}$`),
	"BE": regexp.MustCompile(`^[0-9]{4}$`),
	"LU": regexp.MustCompile(`^[0-9]{4}$`),
	"NL": regexp.MustCompile(`^[0-9]{4}[A-Z]{2}$`),
	"ES": regexp.MustCompile(`^[0-9]{5}$`),
	"PT": regexp.MustCompile(`^[0-9]{4}-[0-9]{3}$`),
	"IT": regexp.MustCompile(`^[0-9]{5}$`),
	"DE": regexp.MustCompile(`^[0-9]{5}$`),
	"AT": regexp.MustCompile(`^[0-9]{4}$`),
}

var (
	cityPattern       = regexp.MustCompile(`^[a-zA-ZÀ-ÿ\s\-'\.]+$`)
	relayPattern      = regexp.MustCompile(`^[0-9]{6}$`)
	expeditionPattern = regexp.MustCompile(`^[0-9]{8}$`)
	phoneSeparators   = regexp.MustCompile(`[\s\.\-\(\)]`)
	phonePattern      = regexp.MustCompile(`^\+?[0-9]+$`)
	emailPattern      = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidateEnseigne checks the merchant account code.
func ValidateEnseigne(enseigne string) []string {
	trimmed := strings.TrimSpace(enseigne)
	switch {
	case enseigne == "":
		return []string{"Numéro d'enseigne vide"}
	case len(trimmed) < MinEnseigneLen:
		return []string{fmt.Sprintf("Numéro d'enseigne trop court (minimum %d caractères)", MinEnseigneLen)}
	case len(trimmed) > MaxEnseigneLen:
		return []string{fmt.Sprintf("Numéro d'enseigne trop long (maximum %d caractères)", MaxEnseigneLen)}
	}
	return nil
}

// ValidatePostalCode checks a postal code against its country's format.
func ValidatePostalCode(postalCode, country string) []string {
	if postalCode == "" {
		return []string{"Code postal requis"}
	}
	pattern, ok := postalPatterns[country]
	if !ok {
		return []string{"Pays non supporté: " + country}
	}
	if !pattern.MatchString(postalCode) {
		return []string{"Format de code postal invalide pour " + country}
	}
	return nil
}

// ValidateCity checks a city name.
func ValidateCity(city string) []string {
	switch {
	case city == "":
		return []string{"Ville requise"}
	case len([]rune(city)) > MaxCityLen:
		return []string{fmt.Sprintf("Nom de ville trop long (maximum %d caractères)", MaxCityLen)}
	case !cityPattern.MatchString(city):
		return []string{"Nom de ville contient des caractères invalides"}
	}
	return nil
}

// ValidateAddressLine checks one of the four carrier address lines.
// Lines 1 and 3 are required; 2 and 4 are optional complements.
func ValidateAddressLine(line string, lineNumber int, required bool) []string {
	if line == "" {
		if required {
			return []string{fmt.Sprintf("Adresse ligne %d requise", lineNumber)}
		}
		return nil
	}
	if len([]rune(line)) > MaxAddressLine {
		return []string{fmt.Sprintf("Adresse ligne %d trop longue (maximum %d caractères)", lineNumber, MaxAddressLine)}
	}
	return nil
}

// NormalizePhone strips the separators the carrier tolerates from a
// phone number.
func NormalizePhone(phone string) string {
	return phoneSeparators.ReplaceAllString(phone, "")
}

// ValidatePhone checks a phone number after separator stripping.
func ValidatePhone(phone string, required bool) []string {
	if phone == "" {
		if required {
			return []string{"Numéro de téléphone requis"}
		}
		return nil
	}
	clean := NormalizePhone(phone)
	switch {
	case len(clean) < MinPhoneDigits:
		return []string{fmt.Sprintf("Numéro de téléphone trop court (minimum %d chiffres)", MinPhoneDigits)}
	case len(clean) > MaxPhoneDigits:
		return []string{fmt.Sprintf("Numéro de téléphone trop long (maximum %d chiffres)", MaxPhoneDigits)}
	case !phonePattern.MatchString(clean):
		return []string{"Format de numéro de téléphone invalide"}
	}
	return nil
}

// ValidateEmail checks an e-mail address.
func ValidateEmail(email string, required bool) []string {
	if email == "" {
		if required {
			return []string{"Adresse e-mail requise"}
		}
		return nil
	}
	switch {
	case len(email) > MaxEmailLen:
		return []string{fmt.Sprintf("Adresse e-mail trop longue (maximum %d caractères)", MaxEmailLen)}
	case !emailPattern.MatchString(email):
		return []string{"Format d'adresse e-mail invalide"}
	}
	return nil
}

// ValidateWeight checks a weight in grams against carrier limits.
func ValidateWeight(grams int) []string {
	switch {
	case grams <= 0:
		return []string{"Poids doit être supérieur à 0"}
	case grams > MaxWeightGrams:
		return []string{"Poids maximum dépassé (30kg)"}
	}
	return nil
}

// ValidateDeliveryMode checks a service-level code.
func ValidateDeliveryMode(mode DeliveryMode) []string {
	if !mode.Valid() {
		return []string{"Mode de livraison invalide: " + string(mode)}
	}
	return nil
}

// ValidateRelayNumber checks a relay point identifier.
func ValidateRelayNumber(relayNumber string) []string {
	switch {
	case relayNumber == "":
		return []string{"Numéro de point relais requis"}
	case !relayPattern.MatchString(relayNumber):
		return []string{"Format de numéro de point relais invalide (6 chiffres requis)"}
	}
	return nil
}

// ValidateExpeditionNumber checks an expedition or tracking number.
func ValidateExpeditionNumber(expeditionNumber string) []string {
	switch {
	case expeditionNumber == "":
		return []string{"Numéro d'expédition requis"}
	case !expeditionPattern.MatchString(expeditionNumber):
		return []string{"Format de numéro d'expédition invalide (8 chiffres requis)"}
	}
	return nil
}

// ValidateCountryCode checks that the carrier serves the country.
func ValidateCountryCode(country string) []string {
	if _, ok := SupportedCountries[country]; !ok {
		return []string{"Code pays non supporté: " + country}
	}
	return nil
}

// ValidateLanguage checks a language code.
func ValidateLanguage(language string) []string {
	for _, l := range SupportedLanguages {
		if language == l {
			return nil
		}
	}
	return []string{"Code langue non supporté: " + language}
}

// ValidateCODAmount checks a cash-on-delivery amount.
func ValidateCODAmount(amount float64) []string {
	switch {
	case amount < 0:
		return []string{"Montant contre-remboursement ne peut pas être négatif"}
	case amount > MaxCODAmount:
		return []string{"Montant contre-remboursement maximum dépassé (3000€)"}
	}
	return nil
}

// ValidateInsurance checks an insurance level flag.
func ValidateInsurance(level string) []string {
	switch level {
	case "0", "1", "2", "3", "4", "5":
		return nil
	}
	return []string{"Niveau d'assurance invalide: " + level}
}

// ValidateAddress checks a full sender or recipient address. Phone is
// only mandatory on the recipient side.
func ValidateAddress(a Address, recipient bool) []string {
	var errs []string
	errs = append(errs, ValidateAddressLine(a.Line1, 1, true)...)
	errs = append(errs, ValidateAddressLine(a.Line2, 2, false)...)
	errs = append(errs, ValidateAddressLine(a.Line3, 3, true)...)
	errs = append(errs, ValidateAddressLine(a.Line4, 4, false)...)
	errs = append(errs, ValidateCity(a.City)...)
	errs = append(errs, ValidatePostalCode(a.PostalCode, a.Country)...)
	errs = append(errs, ValidateCountryCode(a.Country)...)
	errs = append(errs, ValidatePhone(a.Phone, recipient)...)
	if a.Email != "" {
		errs = append(errs, ValidateEmail(a.Email, false)...)
	}
	if a.Language != "" {
		errs = append(errs, ValidateLanguage(a.Language)...)
	}
	return errs
}

// prefixIssues tags each issue with its origin so aggregated reports
// stay readable.
func prefixIssues(prefix string, issues []string) []string {
	if len(issues) == 0 {
		return nil
	}
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = prefix + issue
	}
	return out
}
