package mondialrelay

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Fields is an ordered list of request parameters. The carrier's
// security hash covers the field values in the exact order they are
// sent, so insertion order is part of the wire contract.
type Fields struct {
	keys   []string
	values map[string]string
}

// NewFields returns an empty ordered field list.
func NewFields() *Fields {
	return &Fields{values: make(map[string]string)}
}

// Add appends a field, or updates its value in place when the key is
// already present.
func (f *Fields) Add(key, value string) *Fields {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
	return f
}

// Get returns a field value and whether the key is present.
func (f *Fields) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Keys returns the field names in insertion order.
func (f *Fields) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Values returns the field values in insertion order.
func (f *Fields) Values() []string {
	out := make([]string, len(f.keys))
	for i, k := range f.keys {
		out[i] = f.values[k]
	}
	return out
}

// Len returns the number of fields.
func (f *Fields) Len() int {
	return len(f.keys)
}

// Map returns an unordered snapshot of the fields, used for error
// context.
func (f *Fields) Map() map[string]string {
	out := make(map[string]string, len(f.keys))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Sign computes the carrier security hash over the current fields:
// the MD5 of every value concatenated in insertion order followed by
// the private key, uppercased. MD5 is the carrier's wire contract, not
// a choice this library makes.
func Sign(f *Fields, privateKey string) string {
	return upperMD5(strings.Join(f.Values(), "") + privateKey)
}

// SignAndSeal appends the computed Security field, which the carrier
// requires as the last parameter of every signed call.
func SignAndSeal(f *Fields, privateKey string) *Fields {
	return f.Add("Security", Sign(f, privateKey))
}

func upperMD5(payload string) string {
	sum := md5.Sum([]byte(payload))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// ConnectTracingLink builds an authenticated deep link into the
// carrier's Connect back office for one expedition. The link embeds the
// current timestamp and a CRC over the full URL.
func ConnectTracingLink(expeditionNumber, userLogin, enseigne, password string) string {
	return connectTracingLinkAt(expeditionNumber, userLogin, enseigne, password, time.Now())
}

func connectTracingLinkAt(expeditionNumber, userLogin, enseigne, password string, now time.Time) string {
	url := fmt.Sprintf(
		"http://connect.mondialrelay.com/%s/Expedition/Afficher?numeroExpedition=%s&login=%s&ts=%d",
		enseigne, expeditionNumber, userLogin, now.Unix(),
	)
	return url + "&crc=" + upperMD5(password+"_"+url)
}

// PermalinkTracingLink builds the carrier's permanent public tracking
// URL for one expedition. The CRC covers the enseigne with its brand
// suffix, the expedition number and the private key, each wrapped in
// literal angle brackets.
func PermalinkTracingLink(expeditionNumber, enseigne, brandID, privateKey, language, country string) string {
	ens := enseigne + brandID
	crc := upperMD5("<" + ens + "><" + expeditionNumber + "><" + privateKey + ">")
	return fmt.Sprintf(
		"http://www.mondialrelay.fr/public/permanent/tracking.aspx?ens=%s&exp=%s&pays=%s&language=%s&crc=%s",
		ens, expeditionNumber, country, language, crc,
	)
}
