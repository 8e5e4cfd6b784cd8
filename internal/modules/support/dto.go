package support

type CreateTicketRequest struct {
	Subject string `json:"subject" binding:"required,max=255"`
	Body    string `json:"body" binding:"required"`
}

type AnswerRequest struct {
	Answer string `json:"answer" binding:"required"`
}
