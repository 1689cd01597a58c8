package dto

type Box struct {
	X      int `json:"x" example:"120"`
	Y      int `json:"y" example:"64"`
	Width  int `json:"width" example:"88"`
	Height int `json:"height" example:"88"`
}

type ImageResponse struct {
	ImageData  string   `json:"image_data,omitempty" example:"data:image/jpeg;base64,/9j/4AAQ..."`
	ImageURL   string   `json:"image_url,omitempty" example:"/static/processed/processed_5f1c_photo.jpg"`
	Detections []string `json:"detections"`
}

type VideoResponse struct {
	VideoData        string   `json:"video_data,omitempty" example:"data:video/mp4;base64,AAAAIGZ0eXBpc29t..."`
	VideoURL         string   `json:"video_url,omitempty" example:"/static/processed/processed_5f1c_clip.mp4"`
	OriginalFilename string   `json:"original_filename" example:"clip.mp4"`
	Detections       []string `json:"detections"`
}

type WebcamResponse struct {
	Boxes      []Box    `json:"boxes"`
	Colors     []string `json:"colors"`
	Detections []string `json:"detections"`
}
