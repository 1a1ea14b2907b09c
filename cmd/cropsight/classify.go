package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/verdant-labs/cropsight/core/classify"
	"github.com/verdant-labs/cropsight/core/config"
	"github.com/verdant-labs/cropsight/core/errors"
	"github.com/verdant-labs/cropsight/core/model"
	"github.com/verdant-labs/cropsight/core/secureload"
	"github.com/verdant-labs/cropsight/core/worker"
)

// runClassify is single-shot mode: load, classify one image, print one
// response object, exit. The wire shape matches one worker response line.
func runClassify(arguments []string) int {
	if hasExplainFlag(arguments) {
		return writeExplain("Classify a single image with the encrypted model and print one JSON response.")
	}
	flagSet := flag.NewFlagSet("classify", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	env := config.FromEnv()
	var imagePath string
	var containerPath string
	var keyPath string
	flagSet.StringVar(&imagePath, "image", "", "path to the image to classify")
	flagSet.StringVar(&containerPath, "container", env.ContainerPath, "path to the encrypted model container")
	flagSet.StringVar(&keyPath, "key", env.KeyPath, "path to the model key file")
	if err := flagSet.Parse(arguments); err != nil {
		fmt.Fprintln(os.Stderr, "classify:", err)
		return exitInvalidInput
	}
	if imagePath == "" {
		fmt.Fprintln(os.Stderr, "classify: --image is required")
		return exitInvalidInput
	}

	handle, _, err := secureload.Load(containerPath, keyPath, model.ConstructLinear)
	if err != nil {
		return writeClassifyFailure(err)
	}
	pipeline := classify.Pipeline{
		Model:        handle,
		Preprocessor: model.ImagePreprocessor{Size: model.DefaultImageSize},
		Classes:      classify.DefaultClasses,
	}
	result, err := pipeline.Classify(imagePath)
	if err != nil {
		return writeClassifyFailure(err)
	}
	printResponse(worker.Response{Success: true, Data: &result})
	return exitOK
}

func writeClassifyFailure(err error) int {
	errorType := string(errors.CategoryOf(err))
	if errorType == "" {
		errorType = string(errors.CategoryInternalFailure)
	}
	printResponse(worker.Response{Success: false, Error: err.Error(), ErrorType: errorType})
	if errors.FatalOf(err) {
		return exitStartupFailed
	}
	return exitInternalFailure
}

func printResponse(response worker.Response) {
	encoded, err := json.Marshal(response)
	if err != nil {
		fmt.Println(`{"success":false,"error":"failed to encode response","error_type":"internal_failure"}`)
		return
	}
	fmt.Println(string(encoded))
}
