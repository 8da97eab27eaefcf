package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/talkscribe/internal/common"
)

const previewLen = 60

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= previewLen {
		return s
	}
	return string(r[:previewLen]) + "..."
}

// History lists stored transcripts, newest last, filtered by the optional
// query.
func (a *App) History(ctx context.Context, args []string) error {
	list, err := a.history.Search(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No transcripts found.")
		return nil
	}
	for _, t := range list {
		fmt.Fprintf(a.out, "%s  %s  [%s]  %s\n", t.ID, t.Title, common.FormatDuration(t.AudioDuration), preview(t.Content))
	}
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: show <id>")
		return nil
	}
	t, err := a.history.Detail(ctx, args[0])
	if errors.Is(err, common.ErrorNotFound) {
		fmt.Fprintln(a.out, "Transcript not found.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s\n", t.Title)
	fmt.Fprintf(a.out, "Recorded: %s  Duration: %s\n",
		t.CreatedAt.Local().Format(common.TitleLayout), common.FormatDuration(t.AudioDuration))
	fmt.Fprintf(a.out, "\n%s\n", t.Content)
	if t.TranslatedContent != nil {
		fmt.Fprintf(a.out, "\nTranslation:\n%s\n", *t.TranslatedContent)
	}
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: delete <id>")
		return nil
	}
	ok, err := GetConfirmation(a.reader, "Delete transcript "+args[0]+"?", a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.history.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

func (a *App) Rename(ctx context.Context, args []string) error {
	if len(args) < 2 {
		fmt.Fprintln(a.out, "Usage: rename <id> <title>")
		return nil
	}
	err := a.history.Rename(ctx, args[0], strings.Join(args[1:], " "))
	if errors.Is(err, common.ErrorNotFound) {
		fmt.Fprintln(a.out, "Transcript not found.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Renamed.")
	return nil
}
