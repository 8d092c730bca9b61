package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/avanishm/jobdigest/internal/logger"
	"github.com/avanishm/jobdigest/internal/seen"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the seen-jobs cache",
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print every cached fingerprint with its first-seen date",
	Run: func(_ *cobra.Command, _ []string) {
		cache, config, _ := loadCache()

		records := cache.Records()
		if len(records) == 0 {
			fmt.Printf("seen cache %s is empty\n", cacheFile(config))
			return
		}

		for _, record := range records {
			fmt.Printf("%s  %s\n", record.Fingerprint, record.FirstSeen.Format("2006-01-02"))
		}
		fmt.Printf("%d fingerprints\n", len(records))
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop cache entries older than the dedup window and save",
	Run: func(_ *cobra.Command, _ []string) {
		cache, config, log0 := loadCache()

		windowDays := config.WindowDays
		if windowDays <= 0 {
			windowDays = seen.DefaultWindowDays
		}

		pruned := cache.Prune(time.Now(), windowDays)
		if pruned == 0 {
			fmt.Printf("nothing to prune, %d fingerprints inside the %d-day window\n", cache.Len(), windowDays)
			return
		}

		if !confirm(fmt.Sprintf("Prune %d entries older than %d days?", pruned, windowDays)) {
			fmt.Println("aborted, cache left unchanged")
			return
		}

		if err := cache.Save(); err != nil {
			log0.Fatal("saving seen cache", zap.Error(err))
		}
		fmt.Printf("pruned %d entries, %d remain\n", pruned, cache.Len())
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the cache file so the next run treats every posting as new",
	Run: func(_ *cobra.Command, _ []string) {
		cache, config, log0 := loadCache()
		path := cacheFile(config)

		if cache.Len() == 0 {
			fmt.Printf("seen cache %s is already empty\n", path)
			return
		}

		if !confirm(fmt.Sprintf("Delete %s (%d fingerprints)?", path, cache.Len())) {
			fmt.Println("aborted, cache left unchanged")
			return
		}

		if err := os.Remove(path); err != nil {
			log0.Fatal("removing seen cache", zap.Error(err))
		}
		fmt.Printf("removed %s\n", path)
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func loadCache() (*seen.Cache, *Config, *zap.Logger) {
	log0, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		log0.Fatal("getting a config", zap.Error(err))
	}

	return seen.Load(cacheFile(config), log0), config, log0
}

func confirm(label string) bool {
	prompt := promptui.Select{
		Label: label,
		Items: []string{PromptYes, PromptNo},
	}

	_, selected, err := prompt.Run()
	if err != nil {
		return false
	}

	return selected == PromptYes
}
