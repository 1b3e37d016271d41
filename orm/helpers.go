package orm

type Identifiable[ID comparable] interface {
	GetID() ID
}
