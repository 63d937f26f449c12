// Package pulsesend is the Go client for the PulseSend transactional email API.
//
//	client, err := pulsesend.New(os.Getenv("PULSESEND_API_KEY"))
//	if err != nil {
//	    return err
//	}
//	sent, err := client.Emails.Send(ctx, &pulsesend.SendEmailRequest{
//	    From:    pulsesend.Address("team@example.com"),
//	    To:      []pulsesend.Recipient{pulsesend.Address("alice@example.com")},
//	    Subject: "Welcome aboard",
//	    HTML:    "<p>Hello!</p>",
//	})
//
// Requests are retried on network failures, timeouts, server errors and rate
// limiting. API failures are returned as *engine.Error and can be matched
// with the engine package's sentinels:
//
//	if errors.Is(err, engine.ErrValidationFailed) {
//	    apiErr, _ := engine.AsError(err)
//	    log.Printf("rejected: %v", apiErr.Details)
//	}
package pulsesend
