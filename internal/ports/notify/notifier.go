package notify

// Action es un botón de la notificación ("la tomé", "recuérdame luego").
type Action struct {
	Key   string
	Label string
}

const (
	ActionConfirm = "confirm"
	ActionRemind  = "remind"
)

// Notification es el contenido visible para el usuario. Subtitle lleva
// la hora de la dosis formateada según la convención 12/24h configurada.
type Notification struct {
	Title    string
	Subtitle string
	Body     string
	Actions  []Action
}

// Notifier publica y retira notificaciones identificadas por id de
// medicación. Post sobre un id ya visible la sustituye (refresh), no
// acumula.
type Notifier interface {
	Post(id string, n Notification) error
	Withdraw(id string) error
}
