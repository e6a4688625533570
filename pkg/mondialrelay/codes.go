package mondialrelay

// StatusMessages maps Mondial Relay STAT codes to the carrier's
// documented French messages. Code 0 means success; codes 80-89 are
// tracing states rather than failures.
var StatusMessages = map[int]string{
	0:  "Opération effectuée avec succès",
	1:  "Enseigne invalide",
	2:  "Numéro d'enseigne vide ou inexistant",
	3:  "Numéro de compte enseigne invalide",
	5:  "Numéro de dossier enseigne invalide",
	7:  "Numéro de client enseigne invalide (champ NCLIENT)",
	8:  "Mot de passe ou hachage invalide",
	9:  "Ville non reconnu ou non unique",
	10: "Type de collecte invalide",
	11: "Numéro de Relais de Collecte invalide",
	12: "Pays de Relais de collecte invalide",
	13: "Type de livraison invalide",
	14: "Numéro de Relais de livraison invalide",
	15: "Pays de Relais de livraison invalide",
	20: "Poids du colis invalide",
	21: "Taille (Longueur + Hauteur) du colis invalide",
	22: "Taille du Colis invalide",
	24: "Numéro d'expédition ou de suivi invalide",
	26: "Temps de montage invalide",
	27: "Mode de collecte ou de livraison invalide",
	28: "Mode de collecte invalide",
	29: "Mode de livraison invalide",
	30: "Adresse (L1) invalide",
	31: "Adresse (L2) invalide",
	33: "Adresse (L3) invalide",
	34: "Adresse (L4) invalide",
	35: "Ville invalide",
	36: "Code postal invalide",
	37: "Pays invalide",
	38: "Numéro de téléphone invalide",
	39: "Adresse e-mail invalide",
	40: "Paramètres manquants",
	42: "Montant CRT invalide",
	43: "Devise CRT invalide",
	44: "Valeur du colis invalide",
	45: "Devise de la valeur du colis invalide",
	46: "Plage de numéro d'expédition épuisée",
	47: "Nombre de colis invalide",
	48: "Multi-Colis Relais Interdit",
	49: "Action invalide",
	60: "Champ texte libre invalide (Ce code erreur n'est pas invalidant)",
	61: "Top avisage invalide",
	62: "Instruction de livraison invalide",
	63: "Assurance invalide",
	64: "Temps de montage invalide",
	65: "Top rendez-vous invalide",
	66: "Top reprise invalide",
	67: "Latitude invalide",
	68: "Longitude invalide",
	69: "Code Enseigne invalide",
	70: "Numéro de Point Relais invalide",
	71: "Nature de point de vente non valide",
	74: "Langue invalide",
	78: "Pays de Collecte invalide",
	79: "Pays de Livraison invalide",
	80: "Code tracing : Colis enregistré",
	81: "Code tracing : Colis en traitement chez Mondial Relay",
	82: "Code tracing : Colis livré",
	83: "Code tracing : Anomalie",
	84: "(Réservé Code Tracing)",
	85: "(Réservé Code Tracing)",
	86: "(Réservé Code Tracing)",
	87: "(Réservé Code Tracing)",
	88: "(Réservé Code Tracing)",
	89: "(Réservé Code Tracing)",
	92: "Le code pays du destinataire et le code pays du Point Relais doivent être identiques. Ou Solde insuffisant (comptes prépayés)",
	93: "Aucun élément retourné par le plan de tri Si vous effectuez une collecte ou une livraison en Point Relais, vérifiez que les Point Relais sont bien disponibles. Si vous effectuez une livraison à domicile, il est probable que le code postal que vous avez indiqué n'existe pas.",
	94: "Colis Inexistant",
	95: "Compte Enseigne non activé",
	96: "Type d'enseigne incorrect en Base",
	97: "Clé de sécurité invalide",
	98: "Erreur générique (Paramètres invalides) Cette erreur masque une autre erreur de la liste et ne peut se produire que dans le cas où le compte utilisé est en mode « Production ».",
	99: "Erreur générique du service Cette erreur peut être due à un problème technique du service. Veuillez notifier cette erreur à Mondial Relay en précisant la date et l'heure de la requête ainsi que les paramètres envoyés afin d'effectuer une vérification.",
}

// StatusMessage returns the documented message for a STAT code, or a
// fallback when the code is not in the published table.
func StatusMessage(code int) string {
	if msg, ok := StatusMessages[code]; ok {
		return msg
	}
	return "Erreur inconnue"
}

var (
	authenticationCodes = codeSet(1, 2, 3, 8, 95, 96, 97)

	validationCodes = codeSet(
		5, 7, 9, 10, 11, 12, 13, 14, 15, 20, 21, 22, 24, 26, 27, 28, 29,
		30, 31, 33, 34, 35, 36, 37, 38, 39, 40, 42, 43, 44, 45, 47, 48, 49,
		61, 62, 63, 64, 65, 66, 67, 68, 69, 70, 71, 74, 78, 79, 96, 98,
	)

	businessCodes = codeSet(46, 48, 92, 93, 94)

	trackingCodes = codeSet(80, 81, 82, 83, 84, 85, 86, 87, 88, 89)

	systemCodes = codeSet(99)

	// Codes where retrying with corrected input cannot help: the
	// account itself or the service is broken.
	unrecoverableCodes = codeSet(1, 2, 3, 8, 95, 96, 97, 99)
)

func codeSet(codes ...int) map[int]struct{} {
	set := make(map[int]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}

// SuggestedActions returns operator guidance for a STAT code.
func SuggestedActions(code int) []string {
	switch code {
	case 1, 2, 3:
		return []string{"Vérifiez votre numéro d'enseigne Mondial Relay"}
	case 5:
		return []string{"Vérifiez le numéro de dossier enseigne"}
	case 7:
		return []string{"Vérifiez le numéro de client enseigne (champ NCLIENT)"}
	case 8, 97:
		return []string{"Vérifiez votre clé privée Mondial Relay", "Contactez votre responsable technique"}
	case 9:
		return []string{"Vérifiez l'orthographe de la ville", "Utilisez le code postal à la place"}
	case 10, 13, 27, 28, 29:
		return []string{"Vérifiez le mode de livraison/collecte", "Consultez la documentation des modes disponibles"}
	case 11, 12, 14, 15, 70:
		return []string{"Vérifiez le numéro et pays du Point Relais", "Effectuez une recherche de points relais"}
	case 20:
		return []string{"Vérifiez que le poids est en grammes", "Le poids doit être supérieur à 0"}
	case 21:
		return []string{"Vérifiez la taille (Longueur + Hauteur) du colis"}
	case 22:
		return []string{"Vérifiez la taille du colis"}
	case 24:
		return []string{"Vérifiez le format du numéro d'expédition ou de suivi"}
	case 26, 64:
		return []string{"Vérifiez le temps de montage"}
	case 36:
		return []string{"Vérifiez le format du code postal", "Code postal français : 5 chiffres"}
	case 38:
		return []string{"Vérifiez le format du numéro de téléphone", "Format international recommandé"}
	case 39:
		return []string{"Vérifiez le format de l'adresse e-mail"}
	case 40:
		return []string{"Vérifiez que tous les paramètres requis sont fournis"}
	case 42:
		return []string{"Vérifiez le montant CRT (Contre Remboursement)"}
	case 43:
		return []string{"Vérifiez la devise CRT"}
	case 44:
		return []string{"Vérifiez la valeur du colis"}
	case 45:
		return []string{"Vérifiez la devise de la valeur du colis"}
	case 46:
		return []string{"Contactez Mondial Relay pour obtenir une nouvelle plage de numéros"}
	case 48:
		return []string{"Les expéditions multi-colis ne sont pas autorisées en Point Relais"}
	case 60:
		return []string{"Vérifiez le champ texte libre (erreur non invalidante)"}
	case 61:
		return []string{"Vérifiez le paramètre d'avisage"}
	case 62:
		return []string{"Vérifiez les instructions de livraison"}
	case 63:
		return []string{"Vérifiez les paramètres d'assurance"}
	case 65:
		return []string{"Vérifiez les paramètres de rendez-vous"}
	case 66:
		return []string{"Vérifiez les paramètres de reprise"}
	case 67, 68:
		return []string{"Vérifiez les coordonnées GPS (latitude/longitude)"}
	case 69:
		return []string{"Vérifiez le code enseigne"}
	case 71:
		return []string{"Vérifiez la nature du point de vente"}
	case 74:
		return []string{"Vérifiez le paramètre de langue"}
	case 78, 79:
		return []string{"Vérifiez les pays de collecte et de livraison"}
	case 92:
		return []string{"Vérifiez que le pays du destinataire et du Point Relais sont identiques", "Vérifiez le solde de votre compte prépayé"}
	case 93:
		return []string{"Vérifiez que le Point Relais existe et est ouvert", "Vérifiez que le code postal existe"}
	case 94:
		return []string{"Vérifiez le numéro d'expédition", "Le colis peut ne pas encore être dans le système"}
	case 95:
		return []string{"Contactez Mondial Relay pour activer votre compte"}
	case 96:
		return []string{"Vérifiez le type d'enseigne en base"}
	case 98:
		return []string{"Vérifiez tous les paramètres", "Passez en mode debug pour voir l'erreur détaillée"}
	case 99:
		return []string{"Réessayez plus tard", "Contactez le support technique si le problème persiste"}
	default:
		return []string{"Consultez la documentation", "Contactez le support technique"}
	}
}
