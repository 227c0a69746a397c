package lookup

// NotifyRequest asks the request callback whether the call may proceed.
// It returns true when callbacks are suppressed or no callback is set.
func (b *Base[T]) NotifyRequest(suppress bool, url string, req RequestInit) (bool, error) {
	if b.settings == nil {
		return false, ErrSettingsMissing
	}
	if b.settings.OnRequest != nil && !suppress {
		return b.settings.OnRequest(url, req), nil
	}
	return true, nil
}

// NotifyError hands err to the error callback, if one is set and callbacks
// are not suppressed.
func (b *Base[T]) NotifyError(suppress bool, err error, url string, _ RequestInit) error {
	if b.settings == nil {
		return ErrSettingsMissing
	}
	if b.settings.OnError != nil && !suppress {
		b.settings.OnError(err)
		return nil
	}
	b.log.Debug("lookup error not reported", "url", url, "error", err, "suppressed", suppress)
	return nil
}

// NotifySuccess hands data to the success callback, if one is set and
// callbacks are not suppressed.
func (b *Base[T]) NotifySuccess(suppress bool, data T, _ string, _ RequestInit) error {
	if b.settings == nil {
		return ErrSettingsMissing
	}
	if b.settings.OnSuccess != nil && !suppress {
		b.settings.OnSuccess(data)
	}
	return nil
}
