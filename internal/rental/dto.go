package rental

import "time"

// ListItem es la fila del listado de alquileres con los nombres
// resueltos para mostrar.
type ListItem struct {
	ID              string    `json:"id"`
	Code            string    `json:"code"`
	PropertyID      string    `json:"propertyId"`
	PropertyCode    string    `json:"propertyCode"`
	PropertyAddress string    `json:"propertyAddress"`
	TenantID        string    `json:"tenantId"`
	TenantName      string    `json:"tenantName"`
	OwnerID         string    `json:"ownerId"`
	OwnerName       string    `json:"ownerName"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	Currency        string    `json:"currency"`
	MonthlyAmount   float64   `json:"monthlyAmount"`
	SecurityDeposit *float64  `json:"securityDeposit,omitempty"`
	Status          string    `json:"status"`
	HasContract     bool      `json:"hasContract"`
}

func toListItem(r *Rental) ListItem {
	hasContract := false
	for _, a := range r.Attachments {
		if a.Type == AttachmentContract {
			hasContract = true
			break
		}
	}
	return ListItem{
		ID:              r.ID,
		Code:            r.DisplayCode(),
		PropertyID:      r.Property.ID,
		PropertyCode:    r.Property.Code,
		PropertyAddress: r.Property.AddressLine,
		TenantID:        r.Tenant.ID,
		TenantName:      r.Tenant.FullName,
		OwnerID:         r.Property.OwnerID,
		OwnerName:       r.Property.Owner.FullName,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		Currency:        r.Currency,
		MonthlyAmount:   r.MonthlyAmount,
		SecurityDeposit: r.SecurityDeposit,
		Status:          r.Status,
		HasContract:     hasContract,
	}
}

// DetailRef es una referencia resumida a otra entidad.
type DetailRef struct {
	ID       string `json:"id"`
	FullName string `json:"fullName,omitempty"`
}

// PropertyRef resume la propiedad del contrato.
type PropertyRef struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	AddressLine string    `json:"addressLine"`
	OwnerID     string    `json:"ownerId"`
	Owner       DetailRef `json:"owner"`
}

// Detail es la vista completa de un alquiler.
type Detail struct {
	Rental
	Code           string      `json:"code"`
	Property       PropertyRef `json:"property"`
	Tenant         DetailRef   `json:"tenant"`
	IsInForce      bool        `json:"isInForce"`
	HasContract    bool        `json:"hasContract"`
	HasDeliveryAct bool        `json:"hasDeliveryAct"`
}

func toDetail(r *Rental) Detail {
	hasContract, hasDeliveryAct := false, false
	for _, a := range r.Attachments {
		switch a.Type {
		case AttachmentContract:
			hasContract = true
		case AttachmentDeliveryAct:
			hasDeliveryAct = true
		}
	}
	return Detail{
		Rental: *r,
		Code:   r.DisplayCode(),
		Property: PropertyRef{
			ID:          r.Property.ID,
			Code:        r.Property.Code,
			AddressLine: r.Property.AddressLine,
			OwnerID:     r.Property.OwnerID,
			Owner:       DetailRef{ID: r.Property.Owner.ID, FullName: r.Property.Owner.FullName},
		},
		Tenant:         DetailRef{ID: r.Tenant.ID, FullName: r.Tenant.FullName},
		IsInForce:      r.IsInForce(todayStart()),
		HasContract:    hasContract,
		HasDeliveryAct: hasDeliveryAct,
	}
}
