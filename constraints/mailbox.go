package constraints

func localPartOK(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') || c == '!' || c == '#' || c == '$' ||
		c == '%' || c == '&' || c == '\'' || c == '*' || c == '+' ||
		c == '-' || c == '/' || c == '=' || c == '?' || c == '^' ||
		c == '_' || c == '`' || c == '{' || c == '|' || c == '}' ||
		c == '~' || c == '.'
}

// ParseMailbox parses candidate as an RFC 2821 mailbox, handling
// quoted-string local parts and backslash escapes. On success it
// returns an email Name carrying the local and domain parts; the
// domain part must independently pass ValidHost. On any malformed
// input it returns (nil, false) and never a half-populated name.
func ParseMailbox(candidate []byte) (*Name, bool) {
	if candidate == nil {
		return nil, false
	}

	// It can't be bigger than the local part, domain part and the '@'.
	if len(candidate) > localPartMaxLen+domainPartMaxLen+1 {
		return nil, false
	}

	var (
		working       []byte
		local, domain string
		haveLocal     bool
		haveDomain    bool
		accept        bool
		quoted        bool
	)

	for i := 0; i < len(candidate); i++ {
		c := candidate[i]
		// Non-ASCII, CR, LF or NUL is never allowed.
		if c >= 0x80 || c == '\r' || c == '\n' || c == 0 {
			return nil, false
		}
		if i == 0 {
			// A quoted local part starts with '"'.
			if c == '"' {
				quoted = true
			}
			// Can not start with a '.'.
			if c == '.' {
				return nil, false
			}
		}
		if len(working) > domainPartMaxLen {
			return nil, false
		}
		if accept {
			working = append(working, c)
			accept = false
			continue
		}
		if haveLocal {
			// We are looking for the domain part.
			if len(working) > domainPartMaxLen {
				return nil, false
			}
			working = append(working, c)
			if i == len(candidate)-1 {
				if haveDomain {
					return nil, false
				}
				domain = string(working)
				haveDomain = true
			}
			continue
		}
		// We are looking for the local part.
		if len(working) > localPartMaxLen {
			break
		}

		if quoted {
			if c == '\\' {
				accept = true
				continue
			}
			if c == '"' && i != 0 {
				// End the quoted part. '@' must be next.
				if i+1 == len(candidate) || candidate[i+1] != '@' {
					return nil, false
				}
				quoted = false
			}
			// Space is permitted inside a quoted string, but tab is
			// not.
			if c == '\t' {
				return nil, false
			}
			working = append(working, c)
			continue
		}
		if c == '@' {
			if len(working) == 0 {
				return nil, false
			}
			if haveLocal {
				return nil, false
			}
			local = string(working)
			haveLocal = true
			working = working[:0]
			continue
		}
		if c == '\\' {
			// RFC 3936 hints these can happen outside of a quoted
			// string. Don't include the '\' but the next character
			// must be ok.
			if i+1 == len(candidate) {
				return nil, false
			}
			if !localPartOK(candidate[i+1]) {
				return nil, false
			}
			accept = true
			continue
		}
		if !localPartOK(c) {
			return nil, false
		}
		working = append(working, c)
	}
	if !haveLocal || !haveDomain {
		return nil, false
	}
	if !ValidHost([]byte(domain)) {
		return nil, false
	}
	return newEmailName(local, domain), true
}
