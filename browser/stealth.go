package browser

import "github.com/go-rod/rod"

// stealthScript is injected as a document-start script on every new page
// (section 4.4). It is a behavioral contract, not an optimization: it
// removes the automation flag, normalizes the plugin/language surface,
// keeps the chrome namespace present, and masks the notifications
// permission query, matching the five adjustments the spec names.
const stealthScript = `(() => {
  Object.defineProperty(Navigator.prototype, 'webdriver', { get: () => undefined });

  Object.defineProperty(navigator, 'plugins', {
    get: () => [
      { name: 'Chrome PDF Plugin', filename: 'internal-pdf-viewer' },
      { name: 'Chrome PDF Viewer', filename: 'mhjfbmdgcfjbbpaeojofohoefgiehjai' },
      { name: 'Native Client', filename: 'internal-nacl-plugin' },
    ],
  });

  Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });

  if (!window.chrome) {
    window.chrome = {};
  }
  if (!window.chrome.runtime) {
    window.chrome.runtime = {};
  }

  const originalQuery = window.navigator.permissions && window.navigator.permissions.query;
  if (originalQuery) {
    window.navigator.permissions.query = (parameters) => {
      if (parameters && parameters.name === 'notifications') {
        return Promise.resolve({ state: Notification.permission });
      }
      return originalQuery(parameters);
    };
  }
})();`

// applyStealth registers stealthScript to run before any page script, so the
// adjustments are in effect prior to the first navigation.
func applyStealth(p *rod.Page) error {
	_, err := p.EvalOnNewDocument(stealthScript)
	return err
}
