package service

// Stop ends the active run and the background routines. It is safe to call
// more than once.
func (s *GameService) Stop() {
	s.stopOnce.Do(func() {
		s.session.Stop()
		if s.cancel != nil {
			s.cancel()
		}
		s.wg.Wait()
		s.logger.Info("service: stopped")
	})
}
