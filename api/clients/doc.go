/*
Package clients provides a client library for driving the host key
publication panel over HTTP.

PanelClient keeps the panel's session cookie in a cookie jar and follows the
303 redirects issued by form actions, so every action returns the status page
rendered right after it, including the notifications the action produced.

# Example Usage

	client, err := clients.NewPanelClient("http://127.0.0.1:8080", 30*time.Second)
	if err != nil {
	    return err
	}

	// Import the SSH host key of a domain and print the outcome
	index, err := client.Generate(hostkeys.KindSSH, "example.org")
	for _, msg := range index.Messages {
	    fmt.Println(msg.Severity, msg.Message)
	}

	// Start publishing and poll until the job is done
	index, err = client.Publish(fingerprint)
	index, err = client.WaitForPublish(ctx, 2*time.Second)
*/
package clients
