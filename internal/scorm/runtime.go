package scorm

// runtimeScript is the SCORM 1.2 runtime wrapper shipped as scorm.js.
// Its content never varies by build. It walks a bounded number of ancestor
// frames looking for the LMS API object and swallows every failure so a
// package never breaks the hosting page, even in players that do not
// implement the handshake.
const runtimeScript = `(function () {
  function findApi(win) {
    var maxTries = 500;
    while (win && maxTries--) {
      if (win.API && typeof win.API.LMSInitialize === 'function') {
        return win.API;
      }
      if (win === win.parent) {
        break;
      }
      win = win.parent;
    }
    return null;
  }

  var api = null;
  var initialized = false;

  function init() {
    if (initialized) return;
    api = findApi(window);
    if (!api) return;
    try {
      api.LMSInitialize('');
      initialized = true;
    } catch (e) {
      // ignore
    }
  }

  function setCompleted() {
    if (!initialized || !api) return;
    try {
      api.LMSSetValue('cmi.core.lesson_status', 'completed');
      api.LMSCommit('');
    } catch (e) {
      // ignore
    }
  }

  function finish() {
    if (!initialized || !api) return;
    try {
      api.LMSCommit('');
      api.LMSFinish('');
    } catch (e) {
      // ignore
    }
  }

  window.addEventListener('load', function () {
    init();
    setCompleted();
  });

  window.addEventListener('beforeunload', function () {
    finish();
  });
})();
`
