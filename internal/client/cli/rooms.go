package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/edachat/internal/client/models"
	"github.com/dmitrijs2005/edachat/internal/client/state"
)

var errNoRoom = errors.New("no room is open, use 'open <id>' or 'new [title]' first")

// Rooms reloads the room list and prints it. The open room is marked.
func (a *App) Rooms(ctx context.Context) error {
	rooms, err := a.state.LoadRooms(ctx)
	if err != nil {
		return err
	}
	if len(rooms) == 0 {
		a.println("No rooms yet, create one with 'new [title]'")
		return nil
	}

	current := a.state.Snapshot().CurrentRoomID()

	a.outMu.Lock()
	defer a.outMu.Unlock()
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tTITLE\tMESSAGES\tUPDATED")
	for _, r := range rooms {
		mark := ""
		if r.ID == current {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", mark, r.ID, r.Title, r.MessageCount, formatTime(r.UpdatedAt))
	}
	return tw.Flush()
}

func (a *App) NewRoom(ctx context.Context, args []string) error {
	room, err := a.state.CreateRoom(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	a.printf("Created room %s %q\n", room.ID, room.Title)
	return nil
}

// Open selects a room and prints its conversation.
func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if _, err := a.state.SelectRoom(ctx, args[0]); err != nil {
		return err
	}
	snap := a.state.Snapshot()
	a.printf("Opened %q\n", snap.CurrentRoom.Title)
	a.printMessages(snap.Messages)
	return nil
}

func (a *App) Rename(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	title := strings.Join(args[1:], " ")
	if err := a.state.UpdateRoomTitle(ctx, args[0], title); err != nil {
		return err
	}
	a.printf("Renamed room %s to %q\n", args[0], title)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := a.state.DeleteRoom(ctx, args[0]); err != nil {
		return err
	}
	a.printf("Deleted room %s\n", args[0])
	return nil
}

// Send posts text to the open room and prints the reply. On failure the
// conversation already carries an error entry, which is printed too.
func (a *App) Send(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	room := a.state.Snapshot().CurrentRoom
	if room == nil {
		return errNoRoom
	}

	reply, err := a.state.SendMessage(ctx, room.ID, strings.Join(args, " "))
	if err != nil {
		if msgs := a.state.Snapshot().Messages; len(msgs) > 0 && msgs[len(msgs)-1].Type == models.MessageError {
			a.printMessages(msgs[len(msgs)-1:])
			return nil
		}
		return err
	}

	a.printMessages([]models.Message{{Type: models.MessageBot, Content: reply.Response}})
	return nil
}

func (a *App) History(context.Context) error {
	snap := a.state.Snapshot()
	if snap.CurrentRoom == nil {
		return errNoRoom
	}
	if len(snap.Messages) == 0 {
		a.println("No messages")
		return nil
	}
	a.printMessages(snap.Messages)
	return nil
}

// Clear deletes every message of the open room.
func (a *App) Clear(ctx context.Context) error {
	room := a.state.Snapshot().CurrentRoom
	if room == nil {
		return errNoRoom
	}
	if err := a.state.ClearRoomMessages(ctx, room.ID); err != nil {
		return err
	}
	a.printf("Cleared %q\n", room.Title)
	return nil
}

func (a *App) Sidebar(context.Context) error {
	a.state.ToggleSidebar()
	if a.state.Snapshot().SidebarVisible {
		a.println("Sidebar shown")
	} else {
		a.println("Sidebar hidden")
	}
	return nil
}

func (a *App) Tab(_ context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	switch args[0] {
	case state.TabDashboard, state.TabChat, state.TabEDA:
	default:
		return errUsage
	}
	a.state.SetTab(args[0])
	a.printf("Switched to %s\n", args[0])
	return nil
}

func (a *App) printMessages(msgs []models.Message) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	for _, m := range msgs {
		fmt.Fprintln(a.out, formatMessage(m))
	}
}
