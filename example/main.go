// Example program demonstrating the gitfleet library API.
//
// Run from the repo root to summarize every repository next to this one:
//
//	go run ./example/ ..
//
// Set GITFLEET_FETCH=1 to fetch all of them first.
package main

import (
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/MyCarrier-DevOps/go-gitfleet/pkg/gitfleet"
)

func main() {
	root := "."
	if len(os.Args) > 1 {
		root = os.Args[1]
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	client := gitfleet.New(gitfleet.Options{Logger: logger})

	paths, err := client.Scan(root)
	if err != nil {
		log.Fatalf("scan failed: %v", err)
	}

	if os.Getenv("GITFLEET_FETCH") != "" {
		fetched := client.FetchMany(paths)
		fmt.Printf("fetched %d of %d repositories\n\n", len(fetched), len(paths))
	}

	for _, info := range client.InfoMany(paths) {
		printInfo(info)
	}
}

func printInfo(info gitfleet.RepositoryInfo) {
	branch := info.CurrentBranch
	if branch == "" {
		branch = "(detached)"
	}
	state := "clean"
	if info.IsDirty {
		state = fmt.Sprintf("%d changed, %d untracked", info.UncommittedChanges, info.UntrackedFiles)
	}
	fmt.Printf("%-30s %-20s ahead %-3d behind %-3d %s\n",
		info.Name, branch, info.Ahead, info.Behind, state)
}
