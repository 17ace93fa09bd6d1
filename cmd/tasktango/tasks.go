package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	apperrors "github.com/Raisondetr3/tasktango/internal/errors"
	"github.com/Raisondetr3/tasktango/internal/model"
	"github.com/Raisondetr3/tasktango/internal/service"
	grpcTransport "github.com/Raisondetr3/tasktango/internal/transport/grpc"
	httpTransport "github.com/Raisondetr3/tasktango/internal/transport/http"
)

// taskClient is implemented against local storage and against a remote
// server so every command works in both modes.
type taskClient interface {
	Add(ctx context.Context, text, at string) (*grpcTransport.Reply, error)
	Toggle(ctx context.Context, id string) (*grpcTransport.Reply, error)
	Delete(ctx context.Context, id string) (*grpcTransport.Reply, error)
	ClearCompleted(ctx context.Context) (*grpcTransport.Reply, error)
	List(ctx context.Context, status string) (*grpcTransport.Reply, error)
	Close() error
}

func openClient(ctx context.Context, opts *rootOptions) (taskClient, error) {
	if opts.server != "" {
		conn, err := grpc.NewClient(opts.server, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, err
		}
		return &remoteClient{conn: conn, client: grpcTransport.NewClient(conn)}, nil
	}

	a, err := openApp(ctx, opts.cfg, opts.storeOptions()...)
	if err != nil {
		return nil, err
	}
	return &localClient{app: a}, nil
}

type localClient struct {
	app *app
}

func (c *localClient) Add(ctx context.Context, text, at string) (*grpcTransport.Reply, error) {
	return replyFrom(c.app.store.AddWithTime(ctx, text, at))
}

func (c *localClient) Toggle(ctx context.Context, id string) (*grpcTransport.Reply, error) {
	return requireTask(replyFrom(c.app.store.ToggleComplete(ctx, id)))
}

func (c *localClient) Delete(ctx context.Context, id string) (*grpcTransport.Reply, error) {
	return requireTask(replyFrom(c.app.store.Delete(ctx, id)))
}

func (c *localClient) ClearCompleted(ctx context.Context) (*grpcTransport.Reply, error) {
	return replyFrom(c.app.store.ClearCompleted(ctx))
}

func (c *localClient) List(_ context.Context, status string) (*grpcTransport.Reply, error) {
	var tasks []model.Task
	switch status {
	case "", "all":
		tasks = c.app.store.Tasks()
	case "incomplete":
		tasks = c.app.store.Incomplete()
	case "completed":
		tasks = c.app.store.Completed()
	default:
		return nil, apperrors.ErrInvalidFilter
	}
	return &grpcTransport.Reply{Tasks: tasks, TotalPoints: c.app.store.TotalPoints()}, nil
}

func (c *localClient) Close() error {
	return c.app.Close()
}

func replyFrom(res service.Result, err error) (*grpcTransport.Reply, error) {
	if err != nil {
		return nil, err
	}
	total := 0
	for _, t := range res.Tasks {
		total += t.Points
	}
	return &grpcTransport.Reply{Task: res.Task, Tasks: res.Tasks, TotalPoints: total, Event: res.Event}, nil
}

func requireTask(reply *grpcTransport.Reply, err error) (*grpcTransport.Reply, error) {
	if err != nil {
		return nil, err
	}
	if reply.Task == nil {
		return nil, apperrors.ErrTaskNotFound
	}
	return reply, nil
}

type remoteClient struct {
	conn   *grpc.ClientConn
	client *grpcTransport.Client
}

func (c *remoteClient) Add(ctx context.Context, text, at string) (*grpcTransport.Reply, error) {
	return c.client.AddTask(ctx, text, at)
}

func (c *remoteClient) Toggle(ctx context.Context, id string) (*grpcTransport.Reply, error) {
	return c.client.ToggleTask(ctx, id)
}

func (c *remoteClient) Delete(ctx context.Context, id string) (*grpcTransport.Reply, error) {
	return c.client.DeleteTask(ctx, id)
}

func (c *remoteClient) ClearCompleted(ctx context.Context) (*grpcTransport.Reply, error) {
	return c.client.ClearCompleted(ctx)
}

func (c *remoteClient) List(ctx context.Context, status string) (*grpcTransport.Reply, error) {
	return c.client.ListTasks(ctx, status)
}

func (c *remoteClient) Close() error {
	return c.conn.Close()
}

// withClient opens a client for the duration of fn.
func withClient(cmd *cobra.Command, opts *rootOptions, fn func(context.Context, taskClient) error) error {
	ctx := cmd.Context()

	c, err := openClient(ctx, opts)
	if err != nil {
		return err
	}
	defer c.Close()

	return fn(ctx, c)
}

// resolveID expands a unique id prefix to the full task id.
func resolveID(ctx context.Context, c taskClient, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", apperrors.ErrEmptyTaskID
	}

	reply, err := c.List(ctx, "")
	if err != nil {
		return "", err
	}

	match := ""
	for _, t := range reply.Tasks {
		if t.ID == prefix {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("id prefix %q is ambiguous", prefix)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", apperrors.ErrTaskNotFound
	}
	return match, nil
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "add TEXT...",
		Short: "Add a task, optionally due today at --at HH:MM",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, opts, func(ctx context.Context, c taskClient) error {
				reply, err := c.Add(ctx, strings.Join(args, " "), at)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", formatTask(*reply.Task))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "due time today in 24-hour HH:MM")

	return cmd
}

func newDoneCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "done ID",
		Short: "Toggle a task between completed and not completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, opts, func(ctx context.Context, c taskClient) error {
				id, err := resolveID(ctx, c, args[0])
				if err != nil {
					return err
				}
				reply, err := c.Toggle(ctx, id)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, formatTask(*reply.Task))
				printEvent(out, reply.Event)
				return nil
			})
		},
	}
}

func newRmCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, opts, func(ctx context.Context, c taskClient) error {
				id, err := resolveID(ctx, c, args[0])
				if err != nil {
					return err
				}
				reply, err := c.Delete(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", formatTask(*reply.Task))
				return nil
			})
		},
	}
}

func newClearCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all completed tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, opts, func(ctx context.Context, c taskClient) error {
				reply, err := c.ClearCompleted(ctx)
				if err != nil {
					return err
				}
				printEvent(cmd.OutOrStdout(), reply.Event)
				return nil
			})
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, opts, func(ctx context.Context, c taskClient) error {
				reply, err := c.List(ctx, status)
				if err != nil {
					return err
				}
				printList(cmd.OutOrStdout(), reply)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "all", "all, incomplete or completed")

	return cmd
}

func newPointsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "points",
		Short: "Print the total bonus points",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, opts, func(ctx context.Context, c taskClient) error {
				reply, err := c.List(ctx, "")
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\n", reply.TotalPoints)
				return nil
			})
		},
	}
}

func formatTask(t model.Task) string {
	var b strings.Builder

	if t.Completed {
		b.WriteString("[x] ")
	} else {
		b.WriteString("[ ] ")
	}
	b.WriteString(t.Text)
	if t.HasDueDate() {
		fmt.Fprintf(&b, " (due %s)", t.DueDate.Local().Format("15:04"))
	}
	if t.Points > 0 {
		fmt.Fprintf(&b, " +%d", t.Points)
	}
	fmt.Fprintf(&b, "  %s", shortID(t.ID))

	return b.String()
}

func printList(w io.Writer, reply *grpcTransport.Reply) {
	var incomplete, completed []model.Task
	for _, t := range reply.Tasks {
		if t.Completed {
			completed = append(completed, t)
		} else {
			incomplete = append(incomplete, t)
		}
	}

	fmt.Fprintf(w, "Points: %d\n", reply.TotalPoints)
	if len(incomplete) > 0 {
		fmt.Fprintf(w, "\nTo do (%d)\n", len(incomplete))
		for _, t := range incomplete {
			fmt.Fprintln(w, formatTask(t))
		}
	}
	if len(completed) > 0 {
		fmt.Fprintf(w, "\nCompleted (%d)\n", len(completed))
		for _, t := range completed {
			fmt.Fprintln(w, formatTask(t))
		}
	}
	if len(reply.Tasks) == 0 {
		fmt.Fprintln(w, "No tasks yet.")
	}
}

func printEvent(w io.Writer, ev service.Event) {
	if resp := httpTransport.NewEventResponse(ev); resp != nil {
		fmt.Fprintf(w, "%s %s\n", resp.Title, resp.Description)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
