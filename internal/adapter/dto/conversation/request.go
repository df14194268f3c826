package conversation

// UploadRequest carries the multipart metadata fields that accompany the
// audio file. The file itself arrives as the "audio" form part.
type UploadRequest struct {
	TeacherName   string `form:"teacher_name" validate:"omitempty,max=255"`
	ChildName     string `form:"child_name" validate:"omitempty,max=255"`
	ChildAge      int    `form:"child_age" validate:"omitempty,min=0,max=13"`
	SituationType string `form:"situation_type" validate:"omitempty,max=255"`
	Purpose       string `form:"purpose" validate:"omitempty,max=255"`
	Description   string `form:"description" validate:"omitempty,max=2000"`
}

// ListRequest represents query parameters for listing conversations
type ListRequest struct {
	Query string `query:"q"`
	All   bool   `query:"all"`
}
