package main

import (
	_ "github.com/eleven-am/cascade-detect/docs"
	"github.com/eleven-am/cascade-detect/internal/bootstrap"
)

// @title Cascade Detect API
// @version 1.0.0
// @description Face, pedestrian and vehicle detection on uploaded images, videos and webcam frames

// @BasePath /

func main() {
	bootstrap.Run()
}
