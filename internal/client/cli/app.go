package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/credvault/internal/client/config"
	"github.com/dmitrijs2005/credvault/internal/common"
	gs "github.com/dmitrijs2005/credvault/internal/server/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// vaultAPI is satisfied by grpc.Client.
type vaultAPI interface {
	Call(ctx context.Context, method string, fields map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type App struct {
	config *config.Config
	api    vaultAPI
	conn   io.Closer
	reader *bufio.Reader
	out    io.Writer

	userName     string
	accessToken  string
	refreshToken string
}

func NewApp(c *config.Config) (*App, error) {
	conn, err := grpc.NewClient(c.ServerEndpointAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUserAgent("credvault-cli"),
	)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.ServerEndpointAddr, err)
	}

	return &App{
		config: c,
		api:    gs.NewClient(conn),
		conn:   conn,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.accessToken != ""
}

func (a *App) status() string {
	if a.userName == "" {
		return ""
	}
	return "(" + a.userName + ")"
}

// Run starts the REPL and closes the connection when it ends.
func (a *App) Run(ctx context.Context) {
	defer a.conn.Close()

	fmt.Fprintln(a.out, "Welcome to credvault CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, bufio.NewScanner(a.reader))
}

func (a *App) invoke(ctx context.Context, method string, fields map[string]any) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	if a.accessToken != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, common.AuthorizationHeaderName, common.BearerScheme+" "+a.accessToken)
	}
	return a.api.Call(ctx, method, fields)
}

// call invokes method; an expired access token is refreshed once and the
// call retried.
func (a *App) call(ctx context.Context, method string, fields map[string]any) (map[string]any, error) {
	out, err := a.invoke(ctx, method, fields)
	if status.Code(err) == codes.Unauthenticated && gs.KindOf(err) == common.KindExpiredToken && a.refreshToken != "" {
		if rerr := a.refresh(ctx); rerr != nil {
			return nil, err
		}
		out, err = a.invoke(ctx, method, fields)
	}
	if err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

func (a *App) refresh(ctx context.Context) error {
	a.accessToken = ""
	out, err := a.invoke(ctx, "Refresh", map[string]any{"refresh_token": a.refreshToken})
	if err != nil {
		a.refreshToken = ""
		return err
	}
	a.setTokens(out.AsMap())
	return nil
}

func (a *App) setTokens(m map[string]any) {
	a.accessToken, _ = m["access_token"].(string)
	a.refreshToken, _ = m["refresh_token"].(string)
}

// report prints err in a user-facing form and returns it.
func (a *App) report(err error) error {
	if st, ok := status.FromError(err); ok {
		fmt.Fprintf(a.out, "error: %s\n", st.Message())
	} else {
		fmt.Fprintf(a.out, "error: %v\n", err)
	}
	return err
}
