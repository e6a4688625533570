package soap

import (
	"strconv"
	"strings"

	"github.com/tournevent/mondialrelay/pkg/mondialrelay"
)

// Field order in this file is the carrier's wire contract: the security
// hash covers the values in exactly this sequence, so reordering a
// single Add breaks every signed call.

func relaySearchFields(enseigne string, req *mondialrelay.RelaySearchRequest) *mondialrelay.Fields {
	country := req.Country
	if country == "" {
		country = "FR"
	}
	mode := req.DeliveryMode
	if mode == "" {
		mode = mondialrelay.ModeRelay
	}
	weight := ""
	if req.WeightGrams > 0 {
		weight = strconv.Itoa(req.WeightGrams)
	}
	radius := "20"
	if req.SearchRadiusKm > 0 {
		radius = strconv.Itoa(req.SearchRadiusKm)
	}
	results := "10"
	if req.MaxResults > 0 {
		results = strconv.Itoa(req.MaxResults)
	}

	return mondialrelay.NewFields().
		Add("Enseigne", enseigne).
		Add("Pays", country).
		Add("NumPointRelais", "").
		Add("Ville", "").
		Add("CP", req.PostalCode).
		Add("Latitude", "").
		Add("Longitude", "").
		Add("Taille", "").
		Add("Poids", weight).
		Add("Action", string(mode)).
		Add("DelaiEnvoi", "0").
		Add("RayonRecherche", radius).
		Add("TypeActivite", "").
		Add("NombreResultats", results)
}

func expeditionFields(enseigne string, req *mondialrelay.ExpeditionRequest) *mondialrelay.Fields {
	length := "20"
	if req.LengthCm > 0 {
		length = strconv.Itoa(req.LengthCm)
	}
	packages := "1"
	if req.PackageCount > 0 {
		packages = strconv.Itoa(req.PackageCount)
	}
	declared := "50"
	if req.DeclaredValue > 0 {
		declared = formatAmount(req.DeclaredValue)
	}
	cod := "0"
	if req.CODAmount > 0 {
		cod = formatAmount(req.CODAmount)
	}
	insurance := "0"
	if req.InsuranceLevel != "" {
		insurance = req.InsuranceLevel
	}
	relayCountry := ""
	if req.RelayNumber != "" {
		relayCountry = req.RelayCountry
		if relayCountry == "" {
			relayCountry = "FR"
		}
	}

	return mondialrelay.NewFields().
		Add("Enseigne", enseigne).
		Add("ModeCol", "CCC").
		Add("ModeLiv", string(req.DeliveryMode)).
		Add("NDossier", req.OrderNumber).
		Add("NClient", req.CustomerReference).
		Add("Expe_Langage", languageOrDefault(req.Sender.Language)).
		Add("Expe_Ad1", req.Sender.Line1).
		Add("Expe_Ad2", req.Sender.Line2).
		Add("Expe_Ad3", req.Sender.Line3).
		Add("Expe_Ad4", req.Sender.Line4).
		Add("Expe_Ville", req.Sender.City).
		Add("Expe_CP", req.Sender.PostalCode).
		Add("Expe_Pays", req.Sender.Country).
		Add("Expe_Tel1", req.Sender.Phone).
		Add("Expe_Tel2", req.Sender.Phone2).
		Add("Expe_Mail", req.Sender.Email).
		Add("Dest_Langage", languageOrDefault(req.Recipient.Language)).
		Add("Dest_Ad1", req.Recipient.Line1).
		Add("Dest_Ad2", req.Recipient.Line2).
		Add("Dest_Ad3", req.Recipient.Line3).
		Add("Dest_Ad4", req.Recipient.Line4).
		Add("Dest_Ville", req.Recipient.City).
		Add("Dest_CP", req.Recipient.PostalCode).
		Add("Dest_Pays", req.Recipient.Country).
		Add("Dest_Tel1", req.Recipient.Phone).
		Add("Dest_Tel2", req.Recipient.Phone2).
		Add("Dest_Mail", req.Recipient.Email).
		Add("Poids", strconv.Itoa(req.WeightGrams)).
		Add("Longueur", length).
		Add("Taille", "").
		Add("NbColis", packages).
		Add("CRT_Valeur", cod).
		Add("CRT_Devise", currencyOrDefault(req.CODCurrency)).
		Add("Exp_Valeur", declared).
		Add("Exp_Devise", currencyOrDefault(req.DeclaredCurrency)).
		Add("COL_Rel_Pays", "").
		Add("COL_Rel", "").
		Add("LIV_Rel_Pays", relayCountry).
		Add("LIV_Rel", req.RelayNumber).
		Add("TAvisage", "").
		Add("TReprise", "").
		Add("Montage", "0").
		Add("TRDV", "").
		Add("Assurance", insurance).
		Add("Instructions", req.DeliveryInstruction)
}

func labelBatchFields(enseigne string, expeditionNumbers []string) *mondialrelay.Fields {
	return mondialrelay.NewFields().
		Add("Enseigne", enseigne).
		Add("Expeditions", strings.Join(expeditionNumbers, ";")).
		Add("Langue", "FR")
}

func trackingFields(enseigne, expeditionNumber string) *mondialrelay.Fields {
	return mondialrelay.NewFields().
		Add("Enseigne", enseigne).
		Add("Expedition", expeditionNumber).
		Add("Langue", "FR")
}

func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func languageOrDefault(lang string) string {
	if lang == "" {
		return "FR"
	}
	return lang
}

func currencyOrDefault(currency string) string {
	if currency == "" {
		return "EUR"
	}
	return currency
}
