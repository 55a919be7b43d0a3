package rental

type CreateRentalReq struct {
	BookID         string  `json:"book_id" validate:"required"`
	BookTitle      string  `json:"book_title" validate:"required"`
	RenterName     string  `json:"renter_name" validate:"required"`
	RenterPhone    string  `json:"renter_phone" validate:"required"`
	RenterEmail    string  `json:"renter_email"`
	RentalDuration string  `json:"rental_duration" validate:"required"`
	ReaderID       *string `json:"reader_id"`
	ChildID        *string `json:"child_id"`
	AutoApprove    bool    `json:"auto_approve"`
}

type SetStatusReq struct {
	Status string `json:"status" validate:"required"`
}
