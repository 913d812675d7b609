package transcriptserver

import (
	"context"
	"errors"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterTools registers the youtube_transcript tool on the given MCP server.
func RegisterTools(server *mcp.Server, svc *engine.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_transcript",
		Description: "Fetch the transcript of a YouTube video as one plain-text string. Accepts watch, youtu.be and embed URLs. Returns the video ID, the transcript and its word count.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.TranscriptInput) (*mcp.CallToolResult, *engine.TranscriptResponse, error) {
		resp, err := svc.Transcript(ctx, input.VideoURL)
		if err != nil {
			return nil, nil, errors.New(ErrorMessage(err))
		}
		return nil, resp, nil
	})
}
