package model

// CaseKind enumerates the closed set of case-file kinds a slot
// reservation may be attached to.
type CaseKind string

const (
	CaseRecueil      CaseKind = "recueil_da"
	CaseDemandeAsile CaseKind = "demande_asile"
	CaseDroit        CaseKind = "droit"
)

func (k CaseKind) Valid() bool {
	switch k {
	case CaseRecueil, CaseDemandeAsile, CaseDroit:
		return true
	}
	return false
}

// CaseRef is a tagged reference to the case file holding a reservation.
type CaseRef struct {
	Kind CaseKind `json:"kind" bson:"kind" validate:"required,oneof=recueil_da demande_asile droit"`
	ID   string   `json:"id" bson:"id" validate:"required"`
}
