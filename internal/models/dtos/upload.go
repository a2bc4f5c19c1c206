package dtos

type UploadSlotRequest struct {
	Folder string `json:"folder,omitempty"`
}

type UploadSlotResponse struct {
	UploadURL string `json:"uploadURL"`
}

type FinalizeUploadRequest struct {
	UploadURL string `json:"uploadURL"`
}

type FinalizeUploadResponse struct {
	ObjectPath string `json:"objectPath"`
}
