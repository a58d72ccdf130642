// Package i18n 使用者可見的訊息，依 Accept-Language 選擇英文或羅馬尼亞文。
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys
const (
	ErrorsGeneric        = "errors.generic"
	ErrorsNetwork        = "errors.network"
	EventNotFound        = "details.notFound"
	SeatsFull            = "details.seatsFull"
	RegisterFailed       = "details.registerFailed"
	UnregisterFailed     = "details.unregisterFailed"
	Registered           = "details.registered"
	Unregistered         = "details.unregistered"
	DeleteFailed         = "details.deleteFailed"
	Deleted              = "details.deleted"
	CloneFailed          = "organizer.cloneFailed"
	Cloned               = "organizer.cloned"
	OrganizerLoadFailed  = "organizer.loadFailed"
	ParticipantsFailed   = "organizer.participantsFailed"
	MyEventsFailed       = "myEvents.loadFailed"
	LoginSuccess         = "auth.loginSuccess"
	LoginFailed          = "auth.loginFailed"
	RegisterAccountOK    = "auth.registerSuccess"
	RegisterAccountError = "auth.registerFailed"
	LoggedOut            = "auth.loggedOut"
	UpgradeSuccess       = "auth.upgradeSuccess"
	UpgradeFailed        = "auth.upgradeFailed"
	TooManyRequests      = "errors.tooManyRequests"
	LoginRequired        = "errors.loginRequired"
	InvalidRequest       = "errors.invalidRequest"
	ColumnName           = "participants.name"
	ColumnEmail          = "participants.email"
	ColumnRegisteredAt   = "participants.registeredAt"
)

var supported = []language.Tag{language.English, language.Romanian}

var matcher = language.NewMatcher(supported)

var catalog = map[language.Tag]map[string]string{
	language.English: {
		ErrorsGeneric:        "Something went wrong. Please try again.",
		ErrorsNetwork:        "Could not reach the server. Check your connection.",
		EventNotFound:        "The event does not exist or is no longer available.",
		SeatsFull:            "Sorry, all seats have been taken.",
		RegisterFailed:       "We could not process your registration.",
		UnregisterFailed:     "We could not cancel your registration.",
		Registered:           "Registration confirmed!",
		Unregistered:         "You have unregistered from the event.",
		DeleteFailed:         "We could not delete the event.",
		Deleted:              "Event deleted.",
		CloneFailed:          "We could not clone the event.",
		Cloned:               "Event cloned.",
		OrganizerLoadFailed:  "We could not load your events.",
		ParticipantsFailed:   "We could not load the participants.",
		MyEventsFailed:       "We could not load my events.",
		LoginSuccess:         "Welcome back!",
		LoginFailed:          "Invalid email or password.",
		RegisterAccountOK:    "Your account has been created.",
		RegisterAccountError: "We could not create your account.",
		LoggedOut:            "You have been logged out.",
		UpgradeSuccess:       "Your account is now an organizer account.",
		UpgradeFailed:        "The invite code is not valid.",
		TooManyRequests:      "Too many requests. Try again in a few moments.",
		LoginRequired:        "Please log in to continue.",
		InvalidRequest:       "The request is not valid.",
		ColumnName:           "Name",
		ColumnEmail:          "Email",
		ColumnRegisteredAt:   "Registered at",
	},
	language.Romanian: {
		ErrorsGeneric:        "A apărut o eroare. Încearcă din nou.",
		ErrorsNetwork:        "Serverul nu poate fi contactat. Verifică conexiunea.",
		EventNotFound:        "Evenimentul nu există sau nu mai este disponibil.",
		SeatsFull:            "Ne pare rău, toate locurile au fost ocupate.",
		RegisterFailed:       "Nu am putut procesa înscrierea.",
		UnregisterFailed:     "Nu am putut anula înscrierea.",
		Registered:           "Înscriere confirmată!",
		Unregistered:         "Te-ai dezabonat de la eveniment.",
		DeleteFailed:         "Nu am putut șterge evenimentul.",
		Deleted:              "Evenimentul a fost șters.",
		CloneFailed:          "Nu am putut clona evenimentul.",
		Cloned:               "Evenimentul a fost clonat.",
		OrganizerLoadFailed:  "Nu am putut încărca evenimentele create.",
		ParticipantsFailed:   "Nu am putut încărca participanții.",
		MyEventsFailed:       "Nu am putut încărca evenimentele mele.",
		LoginSuccess:         "Bine ai revenit!",
		LoginFailed:          "Email sau parolă incorecte.",
		RegisterAccountOK:    "Contul a fost creat.",
		RegisterAccountError: "Nu am putut crea contul.",
		LoggedOut:            "Te-ai deconectat.",
		UpgradeSuccess:       "Contul tău este acum cont de organizator.",
		UpgradeFailed:        "Codul de invitație nu este valid.",
		TooManyRequests:      "Prea multe cereri. Încearcă din nou în câteva momente.",
		LoginRequired:        "Autentifică-te pentru a continua.",
		InvalidRequest:       "Cererea nu este validă.",
		ColumnName:           "Nume",
		ColumnEmail:          "Email",
		ColumnRegisteredAt:   "Ora înscrierii",
	},
}

func init() {
	for tag, messages := range catalog {
		for key, text := range messages {
			if err := message.SetString(tag, key, text); err != nil {
				panic(err)
			}
		}
	}
}

// Translator 依語系取得訊息
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// New 依 Accept-Language 選擇語系，無法判斷時使用 fallback
func New(acceptLanguage, fallback string) *Translator {
	tag := Match(acceptLanguage, fallback)
	return &Translator{tag: tag, printer: message.NewPrinter(tag)}
}

// Match 回傳支援的語系之一
func Match(acceptLanguage, fallback string) language.Tag {
	prefs := []string{}
	if acceptLanguage != "" {
		prefs = append(prefs, acceptLanguage)
	}
	if fallback != "" {
		prefs = append(prefs, fallback)
	}
	if len(prefs) == 0 {
		return language.English
	}
	_, index := language.MatchStrings(matcher, prefs...)
	return supported[index]
}

func (t *Translator) Tag() language.Tag {
	return t.tag
}

// T 取得訊息，未定義的 key 原樣回傳
func (t *Translator) T(key string) string {
	if t == nil {
		return key
	}
	return t.printer.Sprintf(key)
}
