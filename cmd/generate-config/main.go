package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/debemdeboas/churchhelp/internal/config"
)

const header = "# ChurchHelp Configuration Example\n" +
	"# Copy this file to config.yaml and customize as needed.\n" +
	"# S3 credentials are read from " + config.EnvS3AccessKeyID + " and " + config.EnvS3SecretAccessKey + ".\n\n"

func exampleConfig() ([]byte, error) {
	yamlData, err := yaml.Marshal(config.Defaults())
	if err != nil {
		return nil, err
	}
	return append([]byte(header), yamlData...), nil
}

func main() {
	output, err := exampleConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating YAML: %v\n", err)
		os.Exit(1)
	}

	outputFile := "config.example.yaml"
	if len(os.Args) > 1 {
		outputFile = os.Args[1]
	}

	if outputFile == "-" {
		os.Stdout.Write(output)
		return
	}

	if err := os.WriteFile(outputFile, output, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated example config: %s\n", outputFile)
}
