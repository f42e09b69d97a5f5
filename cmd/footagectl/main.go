package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"footagelens/internal/client"
	"footagelens/internal/session"
)

func main() {
	var (
		backend  = flag.String("backend", "http://localhost:5000", "Backend base URL")
		email    = flag.String("email", "", "Email the session is scoped to")
		upload   = flag.String("upload", "", "Path to a video to upload, analyze and save")
		name     = flag.String("name", "", "Name for the uploaded footage")
		label    = flag.String("label", "", "Label for the uploaded footage")
		list     = flag.Bool("list", false, "List footages and label counts")
		chatWith = flag.String("chat", "", "Footage ID to open a conversation about")
		ask      = flag.String("ask", "", "Question to ask about the footage given with -chat")
	)
	flag.Parse()

	_ = godotenv.Load()

	if *email == "" {
		*email = os.Getenv("FOOTAGELENS_EMAIL")
	}
	if *email == "" {
		log.Fatal("Please provide an email with -email or FOOTAGELENS_EMAIL")
	}

	mgr := session.NewManager(
		client.NewStoreClient(*backend),
		client.NewAnalysisClient(*backend),
		client.NewConversationClient(*backend),
		*email,
	)
	ctx := context.Background()

	switch {
	case *upload != "":
		runUpload(ctx, mgr, *upload, *name, *label)
	case *list:
		runList(ctx, mgr)
	case *chatWith != "" && *ask != "":
		runChat(ctx, mgr, *chatWith, *ask)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func runUpload(ctx context.Context, mgr *session.Manager, path, name, label string) {
	mgr.SelectFile(filepath.Base(path), func() (io.ReadCloser, error) {
		return os.Open(path)
	})
	mgr.SetDraftDetails(name, label)

	fmt.Println("Uploading for analysis. This might take a while...")
	if err := mgr.SubmitUpload(ctx); err != nil {
		log.Fatal("Analysis failed: ", err)
	}

	analysis, ok := mgr.PendingAnalysis()
	if !ok {
		log.Fatal("No analysis result returned")
	}
	fmt.Printf("Name:  %s\nLabel: %s\n\n%s\n\n", analysis.Name, analysis.Label, analysis.Text)

	if err := mgr.PersistFootage(ctx); err != nil {
		log.Fatal("Failed to save footage: ", err)
	}
	fmt.Println("Footage saved.")
	printFootages(mgr)
}

func runList(ctx context.Context, mgr *session.Manager) {
	if err := mgr.RefreshFootages(ctx); err != nil {
		log.Fatal("Failed to list footages: ", err)
	}
	printFootages(mgr)
}

func runChat(ctx context.Context, mgr *session.Manager, footageID, question string) {
	mgr.OpenConversation(footageID)
	if err := mgr.SendMessage(ctx, question); err != nil {
		log.Fatal("Failed to send message: ", err)
	}
	for _, turn := range mgr.Turns() {
		fmt.Printf("[%s] %s\n", turn.Role, turn.Content)
	}
}

func printFootages(mgr *session.Manager) {
	footages := mgr.Footages()
	fmt.Printf("%d footages:\n", len(footages))
	for _, f := range footages {
		fmt.Printf("  %s  %-24s %-12s %s\n",
			f.ID, f.DisplayName(), f.DisplayLabel(), f.UploadDate.Format("2006-01-02 15:04"))
	}
	counts := mgr.LabelCounts()
	if len(counts) > 0 {
		fmt.Println("Labels:")
		for label, n := range counts {
			fmt.Printf("  %-12s %d\n", label, n)
		}
	}
}
