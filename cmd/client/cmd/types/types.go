package types

type contextKey string

// ClientAppKey is the context key the root command uses to hand the built
// *client.App to subcommands.
const ClientAppKey contextKey = "clientApp"
