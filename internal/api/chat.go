// ABOUTME: Chat endpoint call for the remote nutrition advisor.
// ABOUTME: Posts the composed prompt and returns the assistant reply text.
package api

import "context"

// SendChatMessage sends a prompt to the advisor and returns its reply.
// The bearer token is attached when the client holds one.
func (c *Client) SendChatMessage(ctx context.Context, text string) (string, error) {
	resp, err := c.postJSON(ctx, "/chat/", map[string]string{"message": text}, c.Authenticated())
	if err != nil {
		return "", err
	}
	if !isSuccess(resp.status) {
		return "", statusError(resp, ErrServer)
	}

	var body struct {
		Reply *string `json:"reply"`
	}
	if err := decode(resp, &body); err != nil {
		return "", err
	}
	if body.Reply == nil {
		return "", errMissingField(resp.status, "reply")
	}
	return *body.Reply, nil
}
