package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/vnagri/claimfusion/internal/cfggen"
)

func main() {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetConfigFile(".env")
	if err := viper.ReadInConfig(); err != nil {
		fmt.Printf("Warning: Error reading .env file, using environment variables only: %v\n", err)
	}

	section := flag.String("section", "", "Specify the config section to generate (e.g., llm, workflow, audit)")
	all := flag.Bool("all", false, "Generate every section into one config file")
	flag.Parse()

	outputDir := "configs"
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Printf("Error creating configs directory: %v\n", err)
		os.Exit(1)
	}

	if *all {
		fmt.Println("Generating config for every section...")
		generateConfig("claimfusion", outputDir, allSections)
	} else if *section != "" {
		fmt.Printf("Generating config for section: %s\n", *section)
		generateConfig(*section, outputDir, []string{*section})
	} else {
		fmt.Println("Please specify a section to generate config for using --section <name> or --all to generate everything.")
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("Config generation complete.")
}

var allSections = []string{
	"logger", "otel", "llm", "rate_limit", "breaker",
	"judge_cache", "search", "workflow", "audit",
}

func generateConfig(name, outputDir string, sections []string) {
	cfgGen := cfggen.NewCfgGen(viper.GetViper())
	outputFile := filepath.Join(outputDir, fmt.Sprintf("%s.json", name))

	for _, section := range sections {
		switch section {
		case "logger":
			cfgGen.AddZerologLoggerConfig()
		case "otel":
			cfgGen.AddOtelConfig()
		case "llm":
			cfgGen.AddLLMConfig()
		case "rate_limit":
			cfgGen.AddRateLimiterConfig()
		case "breaker":
			cfgGen.AddBreakerConfig()
		case "judge_cache":
			cfgGen.AddJudgeCacheConfig()
			cfgGen.AddValkeyConfig()
		case "search":
			cfgGen.AddSearchConfig()
		case "workflow":
			cfgGen.AddWorkflowConfig()
		case "audit":
			cfgGen.AddAuditConfig()
			cfgGen.AddPostgresConfig()
		default:
			fmt.Printf("Unknown section: %s. Skipping.\n", section)
		}
	}

	file, err := os.Create(outputFile)
	if err != nil {
		fmt.Printf("Error creating output file %s: %v\n", outputFile, err)
		return
	}
	defer file.Close()

	if err := cfgGen.WriteTo(file, "json"); err != nil {
		fmt.Printf("Error writing config %s to %s: %v\n", name, outputFile, err)
		return
	}
	fmt.Printf("Config '%s' successfully generated to %s\n", name, outputFile)
}
